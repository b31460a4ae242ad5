// Package advisor integrates the generative-AI categorization and advice
// oracle, with a deterministic local fallback for categorization so that an
// unreachable oracle never blocks the user.
package advisor

import (
	"context"
	"fmt"
	"strings"
)

// Client defines the interface for generative model providers.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
}

// NewClient creates an oracle client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return newGeminiClient(cfg)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported advisor provider: %s", cfg.Provider)
	}
}
