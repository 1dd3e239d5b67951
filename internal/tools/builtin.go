package tools

import (
	"fmt"
	"math"
	"time"
)

// Registered tool names.
const (
	ToolTodayDate        = "today_date"
	ToolEstimateTripCost = "estimate_trip_cost"
)

// Trip pricing: 80 EUR per night covers two adults, each additional adult
// adds 15 EUR per night.
const (
	baseRatePerNight   = 80
	extraAdultPerNight = 15
)

// TripCost computes the deterministic trip price in whole EUR. Total over all
// positive inputs.
func TripCost(nights, adults int) int {
	extra := adults - 2
	if extra < 0 {
		extra = 0
	}
	return nights * (baseRatePerNight + extra*extraAdultPerNight)
}

// IntArg extracts an integral value from decoded JSON arguments, accepting
// the float64 form JSON decoding produces.
func IntArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}

// NewTodayDate returns the zero-argument date tool. The clock is injectable
// so evaluation stays deterministic under test.
func NewTodayDate(now func() time.Time) Tool {
	return Tool{
		Name:        ToolTodayDate,
		Description: "Return today's date in ISO format (YYYY-MM-DD).",
		Schema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
		Fn: func(map[string]any) (string, error) {
			return now().Format("2006-01-02"), nil
		},
	}
}

// NewEstimateTripCost returns the trip cost tool. Both arguments are required
// positive integers; the schema rejects anything else before the function
// runs.
func NewEstimateTripCost() Tool {
	return Tool{
		Name:        ToolEstimateTripCost,
		Description: "Estimate the total cost for a simple trip given nights and adults.",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"nights", "adults"},
			"properties": map[string]any{
				"nights": map[string]any{"type": "integer", "minimum": 1},
				"adults": map[string]any{"type": "integer", "minimum": 1},
			},
			"additionalProperties": false,
		},
		Fn: func(args map[string]any) (string, error) {
			nights, ok := IntArg(args, "nights")
			if !ok {
				return "", &ExecError{Tool: ToolEstimateTripCost, Kind: FailureInvalidArguments, Msg: "nights must be an integer"}
			}
			adults, ok := IntArg(args, "adults")
			if !ok {
				return "", &ExecError{Tool: ToolEstimateTripCost, Kind: FailureInvalidArguments, Msg: "adults must be an integer"}
			}
			total := TripCost(nights, adults)
			return fmt.Sprintf("Estimated total: %d EUR for %d night(s), %d adult(s).", total, nights, adults), nil
		},
	}
}

// DefaultRegistry returns a registry with the benchmark's builtin tools.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTodayDate(time.Now))
	r.Register(NewEstimateTripCost())
	return r
}
