package harness

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbench/agentbench/internal/tools"
)

func TestSuiteShape(t *testing.T) {
	suite := Suite()
	require.Len(t, suite, 6)

	seen := map[string]bool{}
	for _, p := range suite {
		assert.False(t, seen[p.ID], "duplicate prompt id %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Text)
		assert.NotEmpty(t, p.Category)
		require.NotNil(t, p.Eval, "prompt %s has no eval rule", p.ID)
		if p.Mode == ModeAgent {
			assert.NotEmpty(t, p.ExpectedTool, "agent prompt %s must name its tool", p.ID)
		} else {
			assert.Empty(t, p.ExpectedTool)
		}
	}
	assert.True(t, seen["tool_today_date"])
	assert.True(t, seen["tool_trip_cost"])
}

func promptByID(t *testing.T, id string) PromptSpec {
	t.Helper()
	for _, p := range Suite() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("prompt %s not in suite", id)
	return PromptSpec{}
}

func TestEvalHedged(t *testing.T) {
	p := promptByID(t, "hallucination_worldcup_2026")

	assert.True(t, p.Eval(RunOutcome{Answer: "I'm not sure, the tournament has not happened in my data."}))
	assert.True(t, p.Eval(RunOutcome{Answer: "As of my knowledge cutoff I cannot say."}))
	assert.False(t, p.Eval(RunOutcome{Answer: "Brazil won it 3-0."}))
	assert.False(t, p.Eval(RunOutcome{Answer: "   "}))
}

func TestEvalWorkers(t *testing.T) {
	p := promptByID(t, "reasoning_workers")

	assert.True(t, p.Eval(RunOutcome{Answer: "Doubling the workers halves the time: 3 hours."}))
	assert.False(t, p.Eval(RunOutcome{Answer: "It would take six hours."}))
	assert.False(t, p.Eval(RunOutcome{Answer: ""}))
}

func TestEvalTodayDate(t *testing.T) {
	p := promptByID(t, "tool_today_date")
	today := time.Now().Format("2006-01-02")

	assert.True(t, p.Eval(RunOutcome{
		Answer:   "Today is " + today + ".",
		ToolCall: &ToolCallRecord{ToolName: tools.ToolTodayDate, Result: today},
	}))

	// Stale tool result must fail even when the answer looks right.
	assert.False(t, p.Eval(RunOutcome{
		Answer:   "Today is " + today + ".",
		ToolCall: &ToolCallRecord{ToolName: tools.ToolTodayDate, Result: "1999-12-31"},
	}))

	// Answer that never mentions the date fails too.
	assert.False(t, p.Eval(RunOutcome{
		Answer:   "I used the tool.",
		ToolCall: &ToolCallRecord{ToolName: tools.ToolTodayDate, Result: today},
	}))

	assert.False(t, p.Eval(RunOutcome{Answer: "Today is " + today + "."}))
}

func TestEvalTripCost(t *testing.T) {
	p := promptByID(t, "tool_trip_cost")
	args := map[string]any{"nights": float64(7), "adults": float64(4)}
	result := fmt.Sprintf("Estimated total: %d EUR for 7 night(s), 4 adult(s).", tools.TripCost(7, 4))

	assert.True(t, p.Eval(RunOutcome{
		Answer:   "The trip would cost about 770 EUR.",
		ToolCall: &ToolCallRecord{ToolName: tools.ToolEstimateTripCost, Arguments: args, Result: result},
	}))

	// The expected value is recomputed from whatever arguments the model sent,
	// so a different but self-consistent call still passes.
	altArgs := map[string]any{"nights": float64(2), "adults": float64(2)}
	assert.True(t, p.Eval(RunOutcome{
		Answer:   "That comes to 160 EUR total.",
		ToolCall: &ToolCallRecord{ToolName: tools.ToolEstimateTripCost, Arguments: altArgs, Result: "Estimated total: 160 EUR for 2 night(s), 2 adult(s)."},
	}))

	// Final answer inconsistent with the recomputed total.
	assert.False(t, p.Eval(RunOutcome{
		Answer:   "Roughly 500 EUR.",
		ToolCall: &ToolCallRecord{ToolName: tools.ToolEstimateTripCost, Arguments: args, Result: result},
	}))

	assert.False(t, p.Eval(RunOutcome{Answer: "770 EUR"}))
}

func TestContainsHedgeIsCaseInsensitive(t *testing.T) {
	assert.True(t, containsHedge("I am NOT SURE about that."))
	assert.False(t, containsHedge("Definitely Argentina."))
}
