package llm

import (
	"context"
	"sync"
)

// MockLLM is a mock implementation of the LLM interface. It records the
// messages and options of every call so tests can assert that policy
// overrides reach the underlying request. Safe for concurrent use.
type MockLLM struct {
	mu sync.Mutex

	// Response is the text response to return.
	Response string
	// Responses, if non-empty, is returned one element per call; calls
	// past the end return Response.
	Responses []string
	// Err is the error to return (if any).
	Err error
	// Fn, if set, computes the response from the request and takes
	// precedence over Response and Responses.
	Fn func(messages []ChatMessage, opts *ChatOptions) (string, error)

	// Calls counts completed calls.
	Calls int
	// LastMessages holds the messages from the most recent call.
	LastMessages []ChatMessage
	// LastOptions holds the options from the most recent call.
	LastOptions *ChatOptions
}

// NewMockLLM creates a new MockLLM with a fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a new MockLLM that returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Err: err}
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return m.Chat(ctx, []ChatMessage{NewUserMessage(prompt)})
}

func (m *MockLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	return m.ChatWithOptions(ctx, messages, nil)
}

func (m *MockLLM) ChatWithOptions(ctx context.Context, messages []ChatMessage, opts *ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastMessages = messages
	m.LastOptions = opts
	call := m.Calls
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if m.Fn != nil {
		return m.Fn(messages, opts)
	}
	if call < len(m.Responses) {
		return m.Responses[call], nil
	}
	return m.Response, nil
}

var _ LLM = (*MockLLM)(nil)
