package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() BenchmarkReport {
	tps := 42.5
	tokens := 30
	return BenchmarkReport{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Outcomes: []RunOutcome{
			{
				Model:         "m1",
				PromptID:      "tool_today_date",
				Category:      "tool_use",
				Mode:          ModeAgent,
				LatencyMillis: 812,
				OK:            true,
				ToolUsed:      true,
				ToolCall:      &ToolCallRecord{ToolName: "today_date", Arguments: map[string]any{}, Result: "2026-08-30"},
				TokensOut:     &tokens,
				TokensPerSec:  &tps,
				Answer:        "Today is 2026-08-30.",
				Timestamp:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			},
		},
		Summaries: map[string]ModelSummary{
			"m1": {Model: "m1", PassCount: 1, Total: 1, PassRate: 1},
		},
		SelectedModel: "m1",
	}
}

func TestWriteReportCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "results.json")
	require.NoError(t, WriteReport(path, sampleReport()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded BenchmarkReport
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "m1", decoded.SelectedModel)
	require.Len(t, decoded.Outcomes, 1)
	assert.Equal(t, "tool_today_date", decoded.Outcomes[0].PromptID)
}

func TestWriteReportStableFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteReport(path, sampleReport()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)

	for _, key := range []string{
		`"run_id"`, `"generated_at"`, `"outcomes"`, `"summaries"`, `"selected_model"`,
		`"prompt_id"`, `"latency_ms"`, `"tool_used"`, `"tool_call"`,
		`"tokens_in"`, `"tokens_out"`, `"tokens_per_sec"`, `"pass_rate"`,
	} {
		assert.Contains(t, out, key)
	}

	// Missing usage metadata serializes as an explicit null, not an absent key.
	assert.Contains(t, out, `"tokens_in": null`)
	// Passing outcomes never carry an error_kind key.
	assert.NotContains(t, out, `"error_kind"`)
}

func TestWriteReportBadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	// Parent "directory" is a regular file, so MkdirAll must fail.
	err := WriteReport(filepath.Join(file, "results.json"), sampleReport())
	assert.Error(t, err)
}

func TestRenderSummaries(t *testing.T) {
	out := RenderSummaries(sampleReport())
	assert.Contains(t, out, "MODEL: m1")
	assert.Contains(t, out, "SELECTED MODEL: m1")
	assert.NotContains(t, out, "ambiguous")
}

func TestRenderSummariesAmbiguous(t *testing.T) {
	r := sampleReport()
	r.SelectedModel = ""
	r.SelectionAmbiguous = true

	out := RenderSummaries(r)
	assert.Contains(t, out, "ambiguous")
	assert.NotContains(t, out, "SELECTED MODEL")
}
