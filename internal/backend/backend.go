// Package backend defines the uniform request/response contract over a
// specific local model runtime. The harness treats every variant through the
// Backend interface; construction is the only place that branches on runtime
// type.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolDescriptor advertises one callable tool to a backend: its name,
// description, and a JSON-schema argument spec.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// ToolCall is a tool invocation requested by the model. ID is set only by
// backends whose wire protocol assigns call identifiers.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Message is one turn in a conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"` // assistant turns that requested tools
	ToolName   string     `json:"tool_name,omitempty"`  // tool result turns
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Request is a single exchange sent to a backend. The full tool descriptor
// set is always attached; the backend decides whether to request a tool.
type Request struct {
	Messages    []Message
	Tools       []ToolDescriptor
	Temperature float64
}

// Usage is backend-reported token accounting. Fields are nil when the
// backend does not report them.
type Usage struct {
	TokensIn  *int
	TokensOut *int
}

// Response is the normalized reply from a backend.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Backend is the uniform contract over one model on one runtime. A single
// instance serializes requests; the harness never sends to the same instance
// concurrently.
type Backend interface {
	// Model returns the stable identity of the model this backend drives.
	Model() string

	// Send performs one request/response exchange. The context carries the
	// per-request timeout; expiry must surface as a KindTimeout error.
	Send(ctx context.Context, req Request) (Response, error)
}

// Kind classifies backend failures.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindUnsupported Kind = "unsupported_capability"
	KindTransport   Kind = "transport_error"
	KindMalformed   Kind = "malformed_response"
)

// Error is a classified backend failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// classifySendError maps a transport-level failure from http.Client.Do.
func classifySendError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}

// newHTTPClient returns a tuned HTTP client with keep-alives. Request
// deadlines come from the caller's context, not the client.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2: true,
	}
	return &http.Client{Transport: transport}
}
