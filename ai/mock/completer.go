package mock

import (
	"context"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns Response.
	CompleteFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Response is returned by Complete when CompleteFunc is nil.
	Response string

	// Prompts records every prompt passed to Complete, in order.
	Prompts []string

	callCount int
}

// NewMockCompleter creates a mock completer that echoes an empty response.
// Note: Returns concrete type to allow test assertions via GetMockCompleter().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the prompt and returns the injected behavior's response.
func (m *MockCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.callCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, maxTokens)
	}

	return m.Response, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// LastPrompt returns the most recent prompt, or "" if none were recorded.
func (m *MockCompleter) LastPrompt() string {
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// Reset clears the call count, recorded prompts, and custom functions.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.Prompts = nil
	m.CompleteFunc = nil
	m.Response = ""
}
