// Package generator produces post text, images and speech with OpenAI.
package generator

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("missing OpenAI API key")
	ErrEmptyResponse = errors.New("openai returned no content")
)

// Generator creates content for a channel. Every call takes the API key to
// bill, since keys are per tenant.
type Generator interface {
	GenerateText(ctx context.Context, topic, channel, systemPrompt, apiKey string) (string, error)
	GenerateImage(ctx context.Context, topic, channel, apiKey string) ([]byte, error)
	GenerateSpeech(ctx context.Context, text, apiKey string) ([]byte, error)
}
