package harness

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentbench/agentbench/internal/backend"
	"github.com/agentbench/agentbench/internal/tools"
)

// Exporter receives finished outcomes for observability. Implementations
// must not block and must never let an export failure reach the harness.
type Exporter interface {
	ExportOutcome(o RunOutcome)
}

// Options configures a benchmark run.
type Options struct {
	// Models lists the backends to benchmark, one per model identity, in the
	// order their outcomes appear in the report.
	Models []backend.Backend

	// Prompts is the suite to run; defaults to Suite().
	Prompts []PromptSpec

	// Tools is the registry advertised to every backend.
	Tools *tools.Registry

	// Concurrency bounds how many models run at once. Prompts within one
	// model are always sequential so a single backend instance never sees
	// concurrent requests.
	Concurrency int

	// RequestTimeout bounds each individual backend exchange.
	RequestTimeout time.Duration

	Temperature float64

	// RunID stamps the report; a fresh UUID is generated when empty.
	RunID string

	// Exporter, when set, is notified once per finished outcome.
	Exporter Exporter

	Logger *slog.Logger
}

// Run executes the full model x prompt cross-product and aggregates the
// results. A failure on one pair is recorded in that pair's outcome and never
// aborts the others; Run itself only fails for unusable options.
func Run(ctx context.Context, opts Options) (BenchmarkReport, error) {
	if len(opts.Models) == 0 {
		return BenchmarkReport{}, errors.New("at least one model backend is required")
	}
	if opts.Tools == nil {
		return BenchmarkReport{}, errors.New("a tool registry is required")
	}
	if len(opts.Prompts) == 0 {
		opts.Prompts = Suite()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// One slot per (model, prompt) pair, reserved up front, so concurrent
	// models never contend on appends and pairs are never merged.
	outcomes := make([]RunOutcome, len(opts.Models)*len(opts.Prompts))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for mi, b := range opts.Models {
		g.Go(func() error {
			logger.Info("benchmarking model", "model", b.Model(), "prompts", len(opts.Prompts))
			runner := &AgentRunner{
				Backend:     b,
				Tools:       opts.Tools,
				Timeout:     opts.RequestTimeout,
				Temperature: opts.Temperature,
				Logger:      logger,
			}
			for pi, p := range opts.Prompts {
				o := runner.Run(ctx, p)
				outcomes[mi*len(opts.Prompts)+pi] = o
				if opts.Exporter != nil {
					opts.Exporter.ExportOutcome(o)
				}
				logger.Info("run complete",
					"model", o.Model, "prompt", o.PromptID, "mode", o.Mode,
					"ok", o.OK, "tool_used", o.ToolUsed,
					"latency_ms", o.LatencyMillis, "error_kind", string(o.ErrorKind))
			}
			return nil
		})
	}
	// Runners never return errors; per-pair failures live in their outcome rows.
	_ = g.Wait()

	summaries := Summarize(outcomes)
	selected, err := Select(summaries)

	report := BenchmarkReport{
		RunID:       opts.RunID,
		GeneratedAt: time.Now(),
		Outcomes:    outcomes,
		Summaries:   summaries,
	}
	switch {
	case errors.Is(err, ErrAmbiguousSelection):
		report.SelectionAmbiguous = true
		logger.Warn("model selection is ambiguous; no model chosen")
	case selected != "":
		report.SelectedModel = selected
	}
	return report, nil
}
