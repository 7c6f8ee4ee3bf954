// Package llm abstracts the completion/embedding collaborator behind a
// single provider interface so components can take a test double.
package llm

import "context"

// Client is the contract every provider implements: chat-style completion
// given a system instruction and user input, plus text embedding. Both may
// fail; callers own their fallbacks.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}
