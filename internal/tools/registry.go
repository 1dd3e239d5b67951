// Package tools implements the deterministic tool registry exposed to model
// backends. Tools are pure functions of their validated arguments plus, at
// most, the current wall-clock time.
package tools

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agentbench/agentbench/internal/backend"
)

// ErrNotFound is returned by Resolve for unregistered tool names.
var ErrNotFound = errors.New("tool not found")

// FailureKind classifies tool execution failures.
type FailureKind string

const (
	FailureInvalidArguments FailureKind = "invalid_arguments"
	FailureInternal         FailureKind = "internal_failure"
)

// ExecError reports a failed tool execution.
type ExecError struct {
	Tool string
	Kind FailureKind
	Msg  string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("tool %s: %s: %s", e.Tool, e.Kind, e.Msg)
}

// Func is the implementation behind a registered tool. Arguments have already
// been validated against the tool's schema when Func runs.
type Func func(args map[string]any) (string, error)

// Tool pairs a callable with the JSON schema its arguments are validated
// against.
type Tool struct {
	Name        string
	Description string
	Schema      map[string]any
	Fn          Func
}

// Registry is a name-to-tool table, stateless between calls and safe for
// concurrent use by multiple in-flight runners.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. The last registration for a name wins.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return t, nil
}

// Descriptors returns the descriptor set for every registered tool, in
// registration order.
func (r *Registry) Descriptors() []backend.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]backend.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, backend.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			Schema:      t.Schema,
		})
	}
	return out
}

// Execute validates arguments against the tool's schema and invokes it.
// Validation failures fail fast with FailureInvalidArguments; the tool
// function never runs on invalid input.
func (r *Registry) Execute(name string, args map[string]any) (string, error) {
	t, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(t.Schema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return "", &ExecError{Tool: name, Kind: FailureInternal, Msg: err.Error()}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return "", &ExecError{Tool: name, Kind: FailureInvalidArguments, Msg: strings.Join(msgs, "; ")}
	}

	out, err := t.Fn(args)
	if err != nil {
		var execErr *ExecError
		if errors.As(err, &execErr) {
			return "", execErr
		}
		return "", &ExecError{Tool: name, Kind: FailureInternal, Msg: err.Error()}
	}
	return out, nil
}
