// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockResponse defines a canned outcome for the mock completer. A nil Choices
// with a nil Err makes the mock echo one choice per prompt.
type MockResponse struct {
	Choices []Choice
	Err     error
}

// MockCompleter is a test double that returns pre-configured responses in
// sequence. After all responses are exhausted, it keeps returning the last one.
// It records every request for later assertion.
type MockCompleter struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
	idx       int
}

// Compile-time check that MockCompleter satisfies the Completer interface.
var _ Completer = (*MockCompleter)(nil)

// NewMockCompleter creates a mock that returns the given responses in order.
// If no responses are provided, every call echoes its prompts.
func NewMockCompleter(responses ...MockResponse) *MockCompleter {
	return &MockCompleter{
		responses: responses,
	}
}

// Complete returns the next canned response and records the request.
// It respects context cancellation.
func (m *MockCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, cloneRequest(req))

	var r MockResponse
	if len(m.responses) > 0 {
		r = m.responses[m.idx]
		if m.idx < len(m.responses)-1 {
			m.idx++
		}
	}

	if r.Err != nil {
		return nil, r.Err
	}

	choices := r.Choices
	if choices == nil {
		choices = EchoChoices(req)
	}

	return &Response{
		Choices: choices,
		Model:   "mock",
		Usage:   Usage{PromptTokens: 10 * len(req.Prompts), TotalTokens: 10 * len(req.Prompts)},
	}, nil
}

// EchoChoices builds the choices a well-behaved endpoint would return for
// req, with each choice's Text naming its prompt.
func EchoChoices(req Request) []Choice {
	n := req.Params.ChoicesPerPrompt()
	out := make([]Choice, 0, len(req.Prompts)*n)
	for i, prompt := range req.Prompts {
		for j := range n {
			out = append(out, Choice{
				Text:         fmt.Sprintf("%s#%d", prompt, j),
				Index:        i*n + j,
				FinishReason: "length",
			})
		}
	}
	return out
}

// Calls returns a copy of all requests received by this mock.
func (m *MockCompleter) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears call history and resets the response index to zero.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.idx = 0
}

func cloneRequest(req Request) Request {
	req.Prompts = append([]string(nil), req.Prompts...)
	return req
}
