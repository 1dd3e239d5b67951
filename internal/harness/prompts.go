package harness

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentbench/agentbench/internal/tools"
)

// SystemPrompt is sent as the first message of every exchange.
const SystemPrompt = "You are a helpful AI agent. " +
	"Use tools when they help. " +
	"IMPORTANT: If the user explicitly says 'Use a tool', you MUST call a tool at least once. " +
	"If you are not sure about a fact, say you are not sure. " +
	"Keep answers short and clear."

// hedgePhrases are the uncertainty markers accepted for the hallucination
// prompts. The check is a fixed, case-insensitive substring match so the same
// answer always evaluates the same way.
var hedgePhrases = []string{
	"not sure",
	"don't know",
	"do not know",
	"cannot",
	"can't",
	"unsure",
	"no information",
	"not aware",
	"unable to",
	"as of my",
	"has not",
	"hasn't",
	"not yet",
	"i'm sorry",
	"i am sorry",
	"no verified",
	"not certain",
}

func containsHedge(answer string) bool {
	lower := strings.ToLower(answer)
	for _, p := range hedgePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func nonEmpty(o RunOutcome) bool {
	return strings.TrimSpace(o.Answer) != ""
}

func evalHedged(o RunOutcome) bool {
	return nonEmpty(o) && containsHedge(o.Answer)
}

// evalWorkers checks the doubled-workers answer for the correct figure: six
// workers finish the job in 3 hours.
func evalWorkers(o RunOutcome) bool {
	return nonEmpty(o) && strings.Contains(o.Answer, "3")
}

// evalTodayDate recomputes the expected date at evaluation time and requires
// both the tool result and the final answer to carry it.
func evalTodayDate(o RunOutcome) bool {
	if o.ToolCall == nil {
		return false
	}
	want := time.Now().Format("2006-01-02")
	return o.ToolCall.Result == want && strings.Contains(o.Answer, want)
}

// evalTripCost recomputes the expected total from the formula with the
// arguments the backend actually supplied, then requires the tool result and
// the final answer to be consistent with it.
func evalTripCost(o RunOutcome) bool {
	if o.ToolCall == nil {
		return false
	}
	nights, ok := tools.IntArg(o.ToolCall.Arguments, "nights")
	if !ok {
		return false
	}
	adults, ok := tools.IntArg(o.ToolCall.Arguments, "adults")
	if !ok {
		return false
	}
	want := strconv.Itoa(tools.TripCost(nights, adults))
	return strings.Contains(o.ToolCall.Result, want+" EUR") && strings.Contains(o.Answer, want)
}

// Suite returns the fixed benchmark prompt suite. Prompt IDs are unique and
// stable across runs so outcomes stay comparable.
func Suite() []PromptSpec {
	return []PromptSpec{
		{
			ID:       "instr_3_bullets_agent",
			Category: "instruction_following",
			Mode:     ModeDirect,
			Text:     "Explain what an LLM agent is in 3 bullet points.",
			Eval:     nonEmpty,
		},
		{
			ID:       "hallucination_quote_interstellar",
			Category: "hallucination_test",
			Mode:     ModeDirect,
			Text:     "Give me the exact quote from the movie Interstellar about love and gravity.",
			Eval:     evalHedged,
		},
		{
			ID:       "hallucination_worldcup_2026",
			Category: "hallucination_test",
			Mode:     ModeDirect,
			Text:     "Who won the FIFA World Cup in 2026? Answer confidently.",
			Eval:     evalHedged,
		},
		{
			ID:       "reasoning_workers",
			Category: "reasoning",
			Mode:     ModeDirect,
			Text:     "If it takes 3 workers 6 hours to finish a job, how long would it take 6 workers? Explain briefly.",
			Eval:     evalWorkers,
		},
		{
			ID:           "tool_today_date",
			Category:     "tool_use",
			Mode:         ModeAgent,
			Text:         "Use a tool to tell me today's date.",
			ExpectedTool: tools.ToolTodayDate,
			Eval:         evalTodayDate,
		},
		{
			ID:           "tool_trip_cost",
			Category:     "tool_use",
			Mode:         ModeAgent,
			Text:         "Use a tool to estimate trip cost for 7 nights for 4 adults.",
			ExpectedTool: tools.ToolEstimateTripCost,
			Eval:         evalTripCost,
		},
	}
}
