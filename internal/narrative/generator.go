// Package narrative turns cohort metrics and participant questions into
// LLM-written text, falling back to fixed messages when generation fails.
package narrative

import (
	"context"
	"errors"
)

// Prompt is a single-turn request to a text model.
type Prompt struct {
	System string
	User   string
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Name() string
}

// ErrUnavailable is returned by the disabled generator.
var ErrUnavailable = errors.New("narrative generation unavailable")

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Disabled fails every call so callers use their fallback text.
type Disabled struct{}

func (Disabled) Generate(context.Context, Prompt) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) Name() string { return ProviderNone }
