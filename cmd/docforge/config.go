// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/docforge/internal/fanout"
	"github.com/pdiddy/docforge/internal/genclient"
	"github.com/pdiddy/docforge/internal/orchestrator"
	"github.com/pdiddy/docforge/internal/pipeline"
	"github.com/pdiddy/docforge/internal/secrets"
	"github.com/pdiddy/docforge/pkg/types"
)

// setDefaults registers the built-in configuration. The default variant is
// a single Gemini Flash slot, which runs the pipeline in single-path mode.
func setDefaults(v *viper.Viper) {
	v.SetDefault("generation.provider", string(types.ProviderGemini))
	v.SetDefault("generation.auto_select", false)
	v.SetDefault("generation.variants", []map[string]any{
		{"model": "gemini-1.5-flash", "temperature": 1.0},
	})
	v.SetDefault("generation.call_timeout", 2*time.Minute)
	v.SetDefault("generation.output_dir", "output")
	v.SetDefault("context.max_chars", 0)
	v.SetDefault("context.chunk_chars", 1200)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Unmarshal only sees keys viper knows about, so provider settings
	// need a default for DOCFORGE_PROVIDERS_* variables to apply.
	for _, p := range []types.Provider{types.ProviderGemini, types.ProviderOpenAI, types.ProviderAnthropic, types.ProviderHTTP} {
		v.SetDefault("providers."+string(p)+".api_key", "")
		v.SetDefault("providers."+string(p)+".base_url", "")
	}
}

// bindEnv maps DOCFORGE_SECTION_KEY variables onto section.key.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DOCFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes the merged configuration and fills provider keys from
// the secrets directory.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	secrets.Apply(loadedSecrets, &cfg.Providers)
	return cfg, nil
}

// usedProviders lists every provider named by a variant slot.
func usedProviders(gen types.GenerationConfig) []types.Provider {
	var out []types.Provider
	add := func(vs []types.VariantConfig) {
		for _, v := range vs {
			if v.Provider != "" {
				out = append(out, v.Provider)
			}
		}
	}
	add(gen.Variants)
	for _, vs := range gen.SectionVariants {
		add(vs)
	}
	return out
}

// buildOrchestrator wires the pipeline, the model router and the
// orchestrator from cfg.
func buildOrchestrator(ctx context.Context, cfg types.Config, sink fanout.Sink, metrics orchestrator.Metrics) (*orchestrator.Orchestrator, error) {
	p, err := pipeline.Load(cfg.Generation.SectionsFile)
	if err != nil {
		return nil, err
	}
	client, err := genclient.New(ctx, genclient.Options{
		Default:   cfg.Generation.Provider,
		Providers: cfg.Providers,
		Use:       usedProviders(cfg.Generation),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("model router ready", zap.Any("providers", client.Providers()))

	return orchestrator.New(orchestrator.Options{
		Pipeline:   p,
		Client:     client,
		Generation: cfg.Generation,
		Context:    cfg.Context,
		Sink:       sink,
		Metrics:    metrics,
		Logger:     logger,
	})
}
