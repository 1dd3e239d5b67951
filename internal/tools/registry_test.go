package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticTool(name, out string) Tool {
	return Tool{
		Name:        name,
		Description: name,
		Schema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{},
			"additionalProperties": false,
		},
		Fn: func(map[string]any) (string, error) { return out, nil },
	}
}

func TestResolveUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Execute("nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register(staticTool("echo", "first"))
	r.Register(staticTool("echo", "second"))

	out, err := r.Execute("echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	// Re-registering must not duplicate the descriptor entry.
	assert.Len(t, r.Descriptors(), 1)
}

func TestDescriptorsPreserveRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(staticTool(name, name))
	}
	descs := r.Descriptors()
	require.Len(t, descs, 3)
	assert.Equal(t, "zeta", descs[0].Name)
	assert.Equal(t, "alpha", descs[1].Name)
	assert.Equal(t, "mid", descs[2].Name)
}

func TestExecutePassesThroughExecError(t *testing.T) {
	want := &ExecError{Tool: "failing", Kind: FailureInvalidArguments, Msg: "bad"}
	tool := staticTool("failing", "")
	tool.Fn = func(map[string]any) (string, error) { return "", want }

	r := NewRegistry()
	r.Register(tool)

	_, err := r.Execute("failing", nil)
	var got *ExecError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, want, got)
}

func TestExecuteWrapsPlainErrors(t *testing.T) {
	tool := staticTool("flaky", "")
	tool.Fn = func(map[string]any) (string, error) { return "", errors.New("disk on fire") }

	r := NewRegistry()
	r.Register(tool)

	_, err := r.Execute("flaky", nil)
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, FailureInternal, execErr.Kind)
	assert.Contains(t, execErr.Msg, "disk on fire")
}

func TestExecuteValidatesBeforeRunning(t *testing.T) {
	ran := false
	tool := Tool{
		Name:        "strict",
		Description: "strict",
		Schema: map[string]any{
			"type":                 "object",
			"required":             []any{"n"},
			"properties":           map[string]any{"n": map[string]any{"type": "integer"}},
			"additionalProperties": false,
		},
		Fn: func(map[string]any) (string, error) {
			ran = true
			return "ok", nil
		},
	}
	r := NewRegistry()
	r.Register(tool)

	_, err := r.Execute("strict", map[string]any{"n": "not a number"})
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, FailureInvalidArguments, execErr.Kind)
	assert.False(t, ran, "tool function must not run on invalid input")
}
