// Package models enumerates the models actually available on each configured
// host, independent of what the config file claims the host carries.
package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentbench/agentbench/internal/config"
)

// HostInventory is the live model listing for one host.
type HostInventory struct {
	Host   config.Host
	Models []string
	Err    error
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

// Inventory queries every host concurrently and returns one entry per host in
// config order. Unreachable hosts report their error instead of failing the
// whole listing.
func Inventory(ctx context.Context, hosts []config.Host) []HostInventory {
	out := make([]HostInventory, len(hosts))
	var wg sync.WaitGroup
	for i, h := range hosts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names, err := fetchModels(ctx, h)
			out[i] = HostInventory{Host: h, Models: names, Err: err}
		}()
	}
	wg.Wait()
	return out
}

func fetchModels(ctx context.Context, h config.Host) ([]string, error) {
	if h.Type == config.HostTypeOpenAI {
		return fetchOpenAIModels(ctx, h.URL)
	}
	return fetchOllamaModels(ctx, h.URL)
}

func fetchOllamaModels(ctx context.Context, baseURL string) ([]string, error) {
	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := getJSON(ctx, strings.TrimRight(baseURL, "/")+"/api/tags", &body); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names, nil
}

func fetchOpenAIModels(ctx context.Context, baseURL string) ([]string, error) {
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := getJSON(ctx, strings.TrimRight(baseURL, "/")+"/v1/models", &body); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(body.Data))
	for _, m := range body.Data {
		names = append(names, m.ID)
	}
	sort.Strings(names)
	return names, nil
}

func getJSON(ctx context.Context, url string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

// Render formats the inventory for terminal output, flagging models the
// config expects but the host does not actually serve.
func Render(inventories []HostInventory) string {
	hostStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	modelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	missingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	var b strings.Builder
	for _, inv := range inventories {
		b.WriteString(hostStyle.Render(fmt.Sprintf("HOST: %s (%s, %s)", inv.Host.Name, inv.Host.Type, inv.Host.URL)) + "\n")
		if inv.Err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("  unreachable: %v", inv.Err)) + "\n\n")
			continue
		}
		available := map[string]bool{}
		for _, m := range inv.Models {
			available[m] = true
			b.WriteString(modelStyle.Render("  "+m) + "\n")
		}
		for _, m := range inv.Host.Models {
			if !available[m] {
				b.WriteString(missingStyle.Render(fmt.Sprintf("  %s (configured but not present)", m)) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
