package aiclient

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a deterministic, KV-cache-simulating Client used by tests and by
// the reasoner/direct workers in offline development. It tracks whether
// Reset was called since the last Complete, so tests can assert the
// reset-before-complete invariant directly.
type Mock struct {
	mu          sync.Mutex
	resetCalled bool
	Responder   func(prompt string, opts Options) (*Response, error)
	Calls       []string
}

// NewMock builds a Mock that, absent a Responder, echoes the prompt back
// wrapped in a marker so callers can see exactly what was asked.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalled = true
	return nil
}

func (m *Mock) Complete(ctx context.Context, prompt string, opts Options) (*Response, error) {
	m.mu.Lock()
	if !m.resetCalled {
		m.mu.Unlock()
		return nil, fmt.Errorf("aiclient: Complete called without a preceding Reset")
	}
	m.resetCalled = false
	m.Calls = append(m.Calls, prompt)
	responder := m.Responder
	m.mu.Unlock()

	if responder != nil {
		return responder(prompt, opts)
	}
	return &Response{Content: "[mock] " + prompt, FinishReason: "stop"}, nil
}

// CallCount reports how many completions have been served.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
