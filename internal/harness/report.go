package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WriteReport persists the report as indented JSON at path, creating parent
// directories as needed. The JSON field names are the stable contract
// consumed by downstream analysis.
func WriteReport(path string, report BenchmarkReport) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummaries formats the per-model summaries and the selection decision
// for terminal output.
func RenderSummaries(report BenchmarkReport) string {
	modelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	metricStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	var names []string
	for name := range report.Summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		s := report.Summaries[name]
		b.WriteString(modelStyle.Render(fmt.Sprintf("MODEL: %s", s.Model)) + "\n")
		b.WriteString(metricStyle.Render(fmt.Sprintf("  pass rate:       %d/%d (%.0f%%)", s.PassCount, s.Total, s.PassRate*100)) + "\n")
		b.WriteString(metricStyle.Render(fmt.Sprintf("  latency p50/p95: %.1f / %.1f ms (avg %.1f)", s.MedianLatencyMillis, s.P95LatencyMillis, s.AvgLatencyMillis)) + "\n")
		b.WriteString(metricStyle.Render(fmt.Sprintf("  tool success:    %.0f%%", s.ToolSuccessRate*100)) + "\n")
		b.WriteString(metricStyle.Render(fmt.Sprintf("  throughput:      %.2f tok/s", s.AvgTokensPerSec)) + "\n\n")
	}

	switch {
	case report.SelectionAmbiguous:
		b.WriteString(warnStyle.Render("SELECTION: ambiguous (models tied on pass rate, latency, and throughput)") + "\n")
	case report.SelectedModel != "":
		b.WriteString(selectedStyle.Render(fmt.Sprintf("SELECTED MODEL: %s", report.SelectedModel)) + "\n")
	}
	return b.String()
}
