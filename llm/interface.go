// Package llm provides the language-model boundary used by sentiment
// annotation, answer generation, and rubric judging.
package llm

import "context"

// LLM is the interface for interacting with Large Language Models.
type LLM interface {
	// Complete generates a completion for a given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Chat generates a response for a list of chat messages.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	// ChatWithOptions generates a response for a list of chat messages
	// with explicit generation options. Nil options use provider defaults.
	ChatWithOptions(ctx context.Context, messages []ChatMessage, opts *ChatOptions) (string, error)
}
