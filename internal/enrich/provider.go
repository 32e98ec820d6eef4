// Package enrich sends segmented resume sections to a generative model and
// parses the structured JSON it returns.
package enrich

import (
	"context"
	"fmt"
	"strings"
)

// Provider completes a single prompt. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Name    string // gemini, claude, openai or offline
	APIKey  string
	Model   string
	BaseURL string // claude and openai only; empty uses the public endpoint
}

// NewProvider builds the provider named by cfg.Name.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case "gemini", "":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "offline":
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown enrichment provider %q", cfg.Name)
	}
}

// Offline answers every prompt with an empty object, so records are built
// from locally recognized fields only.
type Offline struct{}

func (Offline) Name() string  { return "offline" }
func (Offline) Model() string { return "" }

func (Offline) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "{}", nil
}
