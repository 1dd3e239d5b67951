// Package config builds the immutable run configuration. The value is
// constructed once at startup from the config file and CLI flags and passed
// down; inner components never read configuration state ad hoc.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Known host types.
const (
	HostTypeOllama = "ollama"
	HostTypeOpenAI = "openai"
)

// Host describes one model server and the models it carries.
type Host struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Type   string   `json:"type"` // "ollama" or "openai" ("lmstudio" is accepted as an alias)
	Models []string `json:"models"`
}

// Config is the immutable run configuration.
type Config struct {
	Hosts          []Host
	Models         []string // optional filter over host models, in CLI order
	OutputPath     string
	Concurrency    int
	RequestTimeout time.Duration
	Temperature    float64
	OTLPEndpoint   string
	Debug          bool
}

// ModelRef binds one model identity to the host that serves it.
type ModelRef struct {
	Host  Host
	Model string
}

// LoadHosts reads and parses the hosts section of a JSON config file.
func LoadHosts(path string) ([]Host, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	var cfg struct {
		Hosts []Host `json:"hosts"`
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config JSON: %w", err)
	}
	if len(cfg.Hosts) == 0 {
		return nil, errors.New("config must contain at least one host")
	}
	for i := range cfg.Hosts {
		cfg.Hosts[i].Type = normalizeHostType(cfg.Hosts[i].Type)
		if cfg.Hosts[i].Type == "" {
			return nil, fmt.Errorf("host %q: unknown type", cfg.Hosts[i].Name)
		}
		if cfg.Hosts[i].URL == "" {
			return nil, fmt.Errorf("host %q: url is required", cfg.Hosts[i].Name)
		}
	}
	return cfg.Hosts, nil
}

func normalizeHostType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case HostTypeOllama, "":
		return HostTypeOllama
	case HostTypeOpenAI, "lmstudio":
		return HostTypeOpenAI
	}
	return ""
}

// SplitModels parses a comma-separated model list, dropping empty entries.
func SplitModels(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if m := strings.TrimSpace(part); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Selected resolves the (host, model) pairs the run will benchmark. With no
// model filter every host model is selected in config order; with a filter,
// each requested model must be served by some host.
func (c Config) Selected() ([]ModelRef, error) {
	byModel := map[string]Host{}
	var all []ModelRef
	for _, h := range c.Hosts {
		for _, m := range h.Models {
			if _, dup := byModel[m]; !dup {
				byModel[m] = h
				all = append(all, ModelRef{Host: h, Model: m})
			}
		}
	}

	if len(c.Models) == 0 {
		if len(all) == 0 {
			return nil, errors.New("no models configured on any host")
		}
		return all, nil
	}

	out := make([]ModelRef, 0, len(c.Models))
	for _, m := range c.Models {
		h, ok := byModel[m]
		if !ok {
			return nil, fmt.Errorf("model %q is not served by any configured host", m)
		}
		out = append(out, ModelRef{Host: h, Model: m})
	}
	return out, nil
}
