// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/docforge/pkg/types"
)

// Options selects and configures the backends.
type Options struct {
	// Default is used for requests that do not name a provider.
	Default types.Provider

	// Providers holds per-backend keys and endpoints.
	Providers types.ProvidersConfig

	// Use lists the providers to construct. Default is always included.
	Use []types.Provider

	Logger *zap.Logger
}

// New builds a Router over the requested providers, each wrapped with call
// logging.
func New(ctx context.Context, opts Options) (*Router, error) {
	def := normalizeProvider(opts.Default)
	if def == "" {
		def = types.ProviderGemini
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wanted := []types.Provider{def}
	for _, p := range opts.Use {
		if p = normalizeProvider(p); p != "" && p != def {
			wanted = append(wanted, p)
		}
	}

	router := NewRouter(def)
	for _, p := range wanted {
		if router.Has(p) {
			continue
		}
		c, err := newBackend(ctx, p, opts.Providers)
		if err != nil {
			return nil, err
		}
		router.Register(p, WithLogging(c, p, logger))
	}
	return router, nil
}

func newBackend(ctx context.Context, p types.Provider, cfg types.ProvidersConfig) (Client, error) {
	switch p {
	case types.ProviderGemini:
		return NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
	case types.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	case types.ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic api key is required")
		}
		return &AnthropicClient{APIKey: cfg.Anthropic.APIKey, URL: cfg.Anthropic.BaseURL}, nil
	case types.ProviderHTTP:
		return NewGatewayClient(cfg.HTTP.BaseURL, cfg.HTTP.APIKey)
	case types.ProviderEcho:
		return EchoClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", p)
	}
}

func normalizeProvider(p types.Provider) types.Provider {
	return types.Provider(strings.ToLower(strings.TrimSpace(string(p))))
}
