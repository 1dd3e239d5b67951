// Package trace forwards benchmark outcomes to an OTLP/HTTP observability
// backend as one span per outcome. Export is fire-and-forget: queue overflow,
// transport failures, and shutdown errors are logged and never surface to the
// harness or alter an outcome.
package trace

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/agentbench/agentbench/internal/harness"
)

const serviceName = "agentbench"

const queueSize = 256

// Exporter converts finished outcomes into spans and ships them through a
// batching OTLP pipeline on a background goroutine.
type Exporter struct {
	tp     *sdktrace.TracerProvider
	tracer oteltrace.Tracer
	runID  string
	logger *slog.Logger
	ch     chan harness.RunOutcome
	done   chan struct{}
}

var _ harness.Exporter = (*Exporter)(nil)

// New builds an exporter targeting the given OTLP/HTTP endpoint. The caller
// must call Shutdown to flush pending spans.
func New(ctx context.Context, endpoint, runID string, logger *slog.Logger) (*Exporter, error) {
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	if logger == nil {
		logger = slog.Default()
	}

	e := &Exporter{
		tp:     tp,
		tracer: tp.Tracer(serviceName),
		runID:  runID,
		logger: logger,
		ch:     make(chan harness.RunOutcome, queueSize),
		done:   make(chan struct{}),
	}
	go e.loop()
	return e, nil
}

// ExportOutcome queues one outcome for export without blocking. When the
// queue is full the outcome's span is dropped and the drop is logged.
func (e *Exporter) ExportOutcome(o harness.RunOutcome) {
	select {
	case e.ch <- o:
	default:
		e.logger.Warn("trace export queue full, dropping span",
			"model", o.Model, "prompt", o.PromptID)
	}
}

func (e *Exporter) loop() {
	defer close(e.done)
	for o := range e.ch {
		e.record(o)
	}
}

func (e *Exporter) record(o harness.RunOutcome) {
	start := o.Timestamp
	end := start.Add(time.Duration(o.LatencyMillis) * time.Millisecond)

	_, span := e.tracer.Start(context.Background(), "benchmark.run",
		oteltrace.WithTimestamp(start),
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("benchmark.run_id", e.runID),
		attribute.String("gen_ai.request.model", o.Model),
		attribute.String("prompt.id", o.PromptID),
		attribute.String("prompt.mode", string(o.Mode)),
		attribute.Int64("latency_ms", o.LatencyMillis),
		attribute.Bool("ok", o.OK),
		attribute.Bool("tool_used", o.ToolUsed),
	)
	if o.TokensIn != nil {
		span.SetAttributes(attribute.Int("tokens_in", *o.TokensIn))
	}
	if o.TokensOut != nil {
		span.SetAttributes(attribute.Int("tokens_out", *o.TokensOut))
	}
	if o.ToolCall != nil {
		span.SetAttributes(attribute.String("tool.name", o.ToolCall.ToolName))
	}
	if o.ErrorKind != "" {
		span.SetStatus(codes.Error, string(o.ErrorKind))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(oteltrace.WithTimestamp(end))
}

// Shutdown drains the queue and flushes the OTLP pipeline. Failures are
// logged; benchmark results are already safe by the time this runs.
func (e *Exporter) Shutdown(ctx context.Context) {
	close(e.ch)
	select {
	case <-e.done:
	case <-ctx.Done():
	}
	if err := e.tp.Shutdown(ctx); err != nil {
		e.logger.Warn("trace exporter shutdown", "error", err)
	}
}
