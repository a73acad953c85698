package domain

import "context"

// LLMClient sends an ordered message list to the generation provider and
// returns the completion text.
type LLMClient interface {
	Chat(ctx context.Context, messages []Message, maxTokens int) (*LLMResponse, error)
	Version() string
}

// LLMResponse carries the generated text and whether generation finished.
type LLMResponse struct {
	Text string
	Done bool
}
