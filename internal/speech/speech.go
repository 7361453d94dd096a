// Package speech turns narration text into a voiceover audio file.
package speech

import (
	"context"
	"fmt"
)

// interface for voiceover synthesis
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
	// Extension is the file extension matching the container the provider
	// emits, including the dot.
	Extension() string
}

// speech service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// synthesis options
type Options struct {
	// WordsPerMinute is the target speech rate; providers map it onto
	// their own speed knob.
	WordsPerMinute int
	Voice          string
	Model          string
}

// baselineWPM is the approximate rate providers speak at speed 1.0.
const baselineWPM = 170

// speed converts the configured rate into a provider speed multiplier.
func (o Options) speed() float64 {
	if o.WordsPerMinute <= 0 {
		return 1.0
	}
	return float64(o.WordsPerMinute) / baselineWPM
}

// creates synthesizer based on provider
func Factory(ctx context.Context, provider Provider, apiKey string, opts Options) (Synthesizer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAISynthesizer(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiSynthesizer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
