package harness

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/agentbench/agentbench/internal/backend"
	"github.com/agentbench/agentbench/internal/tools"
)

// maxToolTurns bounds how many times a backend may chain tool requests in one
// run before the runner gives up with ErrToolLoopExceeded.
const maxToolTurns = 4

// AgentRunner drives one prompt against one backend, resolving tool-call
// requests through the registry until the backend produces a final answer.
// A runner is bound to a single backend and must not be shared across
// goroutines; the registry it holds may be shared freely.
type AgentRunner struct {
	Backend     backend.Backend
	Tools       *tools.Registry
	Timeout     time.Duration
	Temperature float64
	Logger      *slog.Logger
}

// Run executes the full dispatch loop for one prompt and returns its
// normalized outcome. Backend and tool failures are captured in the outcome,
// never returned.
func (r *AgentRunner) Run(ctx context.Context, prompt PromptSpec) RunOutcome {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := RunOutcome{
		Model:     r.Backend.Model(),
		PromptID:  prompt.ID,
		Category:  prompt.Category,
		Mode:      prompt.Mode,
		Timestamp: time.Now(),
	}
	msgs := []backend.Message{
		{Role: backend.RoleSystem, Content: SystemPrompt},
		{Role: backend.RoleUser, Content: prompt.Text},
	}
	// The full descriptor set goes out regardless of prompt mode; the backend
	// decides whether to request a tool.
	descs := r.Tools.Descriptors()

	var tokensIn, tokensOut *int
	start := time.Now()

	for turn := 0; ; turn++ {
		if turn > maxToolTurns {
			out.ErrorKind = ErrToolLoopExceeded
			break
		}

		resp, dur, err := timedSend(ctx, r.Backend, backend.Request{
			Messages:    msgs,
			Tools:       descs,
			Temperature: r.Temperature,
		}, r.Timeout)
		if err != nil {
			out.ErrorKind = backendErrorKind(err)
			logger.Debug("backend send failed",
				"model", out.Model, "prompt", prompt.ID, "turn", turn,
				"latency_ms", dur.Milliseconds(), "error", err)
			break
		}
		addTokens(&tokensIn, resp.Usage.TokensIn)
		addTokens(&tokensOut, resp.Usage.TokensOut)

		if len(resp.ToolCalls) == 0 {
			out.Answer = resp.Content
			break
		}

		// Echo the assistant turn, then resolve its tool calls strictly in the
		// order the backend returned them.
		msgs = append(msgs, backend.Message{
			Role:      backend.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		toolFailed := false
		for _, call := range resp.ToolCalls {
			rec := ToolCallRecord{ToolName: call.Name, Arguments: call.Arguments}
			out.ToolUsed = true
			result, execErr := r.Tools.Execute(call.Name, call.Arguments)
			if execErr != nil {
				rec.Error = execErr.Error()
				out.ToolCall = &rec
				out.ErrorKind = ErrToolExecution
				toolFailed = true
				break
			}
			rec.Result = result
			if out.ToolCall == nil || rec.ToolName == prompt.ExpectedTool {
				out.ToolCall = &rec
			}
			msgs = append(msgs, backend.Message{
				Role:       backend.RoleTool,
				Content:    result,
				ToolName:   call.Name,
				ToolCallID: call.ID,
			})
		}
		if toolFailed {
			break
		}
	}

	elapsed := time.Since(start)
	out.LatencyMillis = elapsed.Milliseconds()
	out.TokensIn = tokensIn
	out.TokensOut = tokensOut
	out.TokensPerSec = TokensPerSec(tokensOut, elapsed)

	if out.ErrorKind == "" {
		out.OK = r.evaluate(prompt, &out)
	}
	return out
}

// evaluate applies the pass/fail policy at the final state. Agent-mode
// prompts require an error-free call to the expected tool before the
// prompt-specific rule runs.
func (r *AgentRunner) evaluate(prompt PromptSpec, o *RunOutcome) bool {
	if prompt.Mode == ModeAgent {
		if !o.ToolUsed {
			o.ErrorKind = ErrToolNotInvoked
			return false
		}
		if o.ToolCall == nil || o.ToolCall.Error != "" {
			return false
		}
		if prompt.ExpectedTool != "" && o.ToolCall.ToolName != prompt.ExpectedTool {
			return false
		}
	}
	if prompt.Eval != nil {
		return prompt.Eval(*o)
	}
	return strings.TrimSpace(o.Answer) != ""
}

// backendErrorKind maps a backend failure onto the outcome taxonomy.
func backendErrorKind(err error) ErrorKind {
	var be *backend.Error
	if errors.As(err, &be) {
		switch be.Kind {
		case backend.KindTimeout:
			return ErrBackendTimeout
		case backend.KindUnsupported:
			return ErrBackendUnsupported
		case backend.KindMalformed:
			return ErrBackendMalformed
		}
		return ErrBackendTransport
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrBackendTimeout
	}
	return ErrBackendTransport
}

func addTokens(acc **int, v *int) {
	if v == nil {
		return
	}
	if *acc == nil {
		n := *v
		*acc = &n
		return
	}
	**acc += *v
}
