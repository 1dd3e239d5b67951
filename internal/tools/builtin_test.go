package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripCost(t *testing.T) {
	cases := []struct {
		nights, adults, want int
	}{
		{nights: 3, adults: 2, want: 240},
		{nights: 7, adults: 4, want: 770},
		{nights: 1, adults: 1, want: 80},
		{nights: 2, adults: 3, want: 190},
		{nights: 5, adults: 2, want: 400},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TripCost(c.nights, c.adults), "nights=%d adults=%d", c.nights, c.adults)
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]any{
		"int":      7,
		"float":    float64(7),
		"fraction": 7.5,
		"text":     "7",
	}

	v, ok := IntArg(args, "int")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	// JSON decoding hands numbers over as float64.
	v, ok = IntArg(args, "float")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = IntArg(args, "fraction")
	assert.False(t, ok)

	_, ok = IntArg(args, "text")
	assert.False(t, ok)

	_, ok = IntArg(args, "missing")
	assert.False(t, ok)
}

func TestTodayDateTool(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	r := NewRegistry()
	r.Register(NewTodayDate(func() time.Time { return fixed }))

	out, err := r.Execute(ToolTodayDate, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", out)
}

func TestTodayDateToolRejectsArguments(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTodayDate(time.Now))

	_, err := r.Execute(ToolTodayDate, map[string]any{"timezone": "UTC"})
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, FailureInvalidArguments, execErr.Kind)
}

func TestEstimateTripCostTool(t *testing.T) {
	r := DefaultRegistry()

	out, err := r.Execute(ToolEstimateTripCost, map[string]any{"nights": float64(7), "adults": float64(4)})
	require.NoError(t, err)
	assert.Equal(t, "Estimated total: 770 EUR for 7 night(s), 4 adult(s).", out)
}

func TestEstimateTripCostToolInvalidArguments(t *testing.T) {
	r := DefaultRegistry()

	cases := map[string]map[string]any{
		"zero nights":    {"nights": float64(0), "adults": float64(2)},
		"missing adults": {"nights": float64(3)},
		"string nights":  {"nights": "three", "adults": float64(2)},
		"extra field":    {"nights": float64(3), "adults": float64(2), "pets": float64(1)},
		"no arguments":   nil,
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Execute(ToolEstimateTripCost, args)
			var execErr *ExecError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, FailureInvalidArguments, execErr.Kind)
			assert.Equal(t, ToolEstimateTripCost, execErr.Tool)
		})
	}
}

func TestDefaultRegistryDescriptors(t *testing.T) {
	descs := DefaultRegistry().Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, ToolTodayDate, descs[0].Name)
	assert.Equal(t, ToolEstimateTripCost, descs[1].Name)
	for _, d := range descs {
		assert.NotEmpty(t, d.Description)
		assert.NotNil(t, d.Schema)
	}
}
