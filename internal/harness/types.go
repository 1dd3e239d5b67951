// Package harness drives the fixed prompt suite against every configured
// model backend and reduces the raw outcomes into comparable per-model
// summaries and a selection decision.
package harness

import "time"

// PromptMode distinguishes plain completion prompts from prompts that must
// invoke a tool to pass.
type PromptMode string

const (
	ModeDirect PromptMode = "direct"
	ModeAgent  PromptMode = "agent"
)

// EvalRule is a pure pass/fail policy applied to a finished outcome. Rules
// must be reproducible and free of human judgment at evaluation time.
type EvalRule func(o RunOutcome) bool

// PromptSpec is one canonical test prompt. The suite is immutable and defined
// once in prompts.go.
type PromptSpec struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Mode         PromptMode `json:"mode"`
	Text         string     `json:"text"`
	ExpectedTool string     `json:"expected_tool,omitempty"` // required when Mode is agent
	Eval         EvalRule   `json:"-"`
}

// ToolCallRecord captures a single tool invocation requested by a backend.
type ToolCallRecord struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// ErrorKind names a per-outcome failure class.
type ErrorKind string

const (
	ErrBackendTimeout     ErrorKind = "backend_timeout"
	ErrBackendUnsupported ErrorKind = "backend_unsupported_capability"
	ErrBackendTransport   ErrorKind = "backend_transport_error"
	ErrBackendMalformed   ErrorKind = "backend_malformed_response"
	ErrToolExecution      ErrorKind = "tool_execution_error"
	ErrToolNotInvoked     ErrorKind = "tool_not_invoked"
	ErrToolLoopExceeded   ErrorKind = "tool_loop_exceeded"
)

// RunOutcome is the normalized result of driving one prompt against one
// model. Exactly one outcome exists per (model, prompt) pair per run, and it
// is immutable once recorded. Token fields are null when the backend reported
// no usage metadata; tokens_per_sec is additionally null when latency is zero.
type RunOutcome struct {
	Model         string          `json:"model"`
	PromptID      string          `json:"prompt_id"`
	Category      string          `json:"category"`
	Mode          PromptMode      `json:"mode"`
	LatencyMillis int64           `json:"latency_ms"`
	OK            bool            `json:"ok"`
	ToolUsed      bool            `json:"tool_used"`
	ToolCall      *ToolCallRecord `json:"tool_call,omitempty"`
	TokensIn      *int            `json:"tokens_in"`
	TokensOut     *int            `json:"tokens_out"`
	TokensPerSec  *float64        `json:"tokens_per_sec"`
	ErrorKind     ErrorKind       `json:"error_kind,omitempty"`
	Answer        string          `json:"answer"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ModelSummary aggregates all outcomes for one model. ToolSuccessRate is
// computed over the agent-mode subset only; AvgTokensPerSec over outcomes
// where the rate is defined.
type ModelSummary struct {
	Model               string  `json:"model"`
	PassCount           int     `json:"pass_count"`
	Total               int     `json:"total"`
	PassRate            float64 `json:"pass_rate"`
	AvgLatencyMillis    float64 `json:"avg_latency_ms"`
	MedianLatencyMillis float64 `json:"median_latency_ms"`
	P95LatencyMillis    float64 `json:"p95_latency_ms"`
	ToolSuccessRate     float64 `json:"tool_success_rate"`
	AvgTokensPerSec     float64 `json:"avg_tokens_per_sec"`
}

// BenchmarkReport is the top-level artifact of a run: the ordered outcome
// list, per-model summaries, and the selection decision. Append-only during a
// run, frozen after aggregation.
type BenchmarkReport struct {
	RunID              string                  `json:"run_id"`
	GeneratedAt        time.Time               `json:"generated_at"`
	Outcomes           []RunOutcome            `json:"outcomes"`
	Summaries          map[string]ModelSummary `json:"summaries"`
	SelectedModel      string                  `json:"selected_model,omitempty"`
	SelectionAmbiguous bool                    `json:"selection_ambiguous,omitempty"`
}
