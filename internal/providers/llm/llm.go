package llm

import "context"

type Provider interface {
	// Complete sends the prompt and returns the full textual response.
	Complete(ctx context.Context, prompt string) (string, error)
	// Model reports the model tag, recorded as ai_provider on stored matches.
	Model() string
	Close() error
}
