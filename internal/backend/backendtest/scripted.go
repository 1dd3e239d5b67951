// Package backendtest provides a deterministic scripted backend for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentbench/agentbench/internal/backend"
)

// Turn configures one scripted exchange.
type Turn struct {
	Resp  backend.Response
	Err   error
	Delay time.Duration // simulated backend latency
}

// Scripted replays a fixed sequence of responses and records every request it
// receives. It implements backend.Backend.
type Scripted struct {
	name string

	mu       sync.Mutex
	index    int
	turns    []Turn
	requests []backend.Request
}

// New creates a scripted backend for the given model identity.
func New(name string, turns ...Turn) *Scripted {
	cloned := make([]Turn, len(turns))
	copy(cloned, turns)
	return &Scripted{name: name, turns: cloned}
}

var _ backend.Backend = (*Scripted)(nil)

func (s *Scripted) Model() string { return s.name }

// Send implements backend.Backend.
func (s *Scripted) Send(ctx context.Context, req backend.Request) (backend.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	if s.index >= len(s.turns) {
		step := s.index + 1
		s.mu.Unlock()
		return backend.Response{}, fmt.Errorf("script exhausted at step %d", step)
	}
	turn := s.turns[s.index]
	s.index++
	s.mu.Unlock()

	if turn.Delay > 0 {
		select {
		case <-time.After(turn.Delay):
		case <-ctx.Done():
			return backend.Response{}, &backend.Error{Kind: backend.KindTimeout, Err: ctx.Err()}
		}
	}
	if turn.Err != nil {
		return backend.Response{}, turn.Err
	}
	return turn.Resp, nil
}

// Requests returns a copy of all requests received so far.
func (s *Scripted) Requests() []backend.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.Request, len(s.requests))
	copy(out, s.requests)
	return out
}
