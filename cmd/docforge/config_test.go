// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docforge/internal/fanout"
	"github.com/pdiddy/docforge/internal/secrets"
	"github.com/pdiddy/docforge/pkg/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, types.ProviderGemini, cfg.Generation.Provider)
	assert.False(t, cfg.Generation.AutoSelect)
	assert.Equal(t, []types.VariantConfig{{ModelID: "gemini-1.5-flash", Temperature: 1}}, cfg.Generation.Variants)
	assert.Equal(t, 2*time.Minute, cfg.Generation.CallTimeout)
	assert.Equal(t, "output", cfg.Generation.OutputDir)
	assert.Equal(t, 1200, cfg.Context.ChunkChars)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  auto_select: true
  variants:
    - model: gemini-1.5-flash
      temperature: 0.2
    - model: gpt-4o-mini
      temperature: 0.9
      provider: openai
  section_variants:
    Conclusion:
      - model: claude-3-5-haiku
        temperature: 0.5
        provider: anthropic
providers:
  openai:
    api_key: from-file
`), 0o644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	loadedSecrets = map[string]string{secrets.OpenAIKey: "from-secrets", secrets.AnthropicKey: "an"}
	t.Cleanup(func() { loadedSecrets = nil })

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.True(t, cfg.Generation.AutoSelect)
	require.Len(t, cfg.Generation.Variants, 2)
	assert.Equal(t, types.Provider("openai"), cfg.Generation.Variants[1].Provider)
	assert.Equal(t, "claude-3-5-haiku", cfg.Generation.VariantsFor("Conclusion")[0].ModelID)
	assert.Equal(t, "from-file", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "an", cfg.Providers.Anthropic.APIKey)

	assert.ElementsMatch(t, []types.Provider{"openai", "anthropic"}, usedProviders(cfg.Generation))
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("DOCFORGE_PROVIDERS_GEMINI_API_KEY", "from-env")
	t.Setenv("DOCFORGE_PROVIDERS_HTTP_BASE_URL", "http://gateway.local/generate")
	t.Setenv("DOCFORGE_GENERATION_AUTO_SELECT", "true")

	v := viper.New()
	bindEnv(v)
	setDefaults(v)

	loadedSecrets = map[string]string{secrets.GeminiKey: "from-secrets"}
	t.Cleanup(func() { loadedSecrets = nil })

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Providers.Gemini.APIKey)
	assert.Equal(t, "http://gateway.local/generate", cfg.Providers.HTTP.BaseURL)
	assert.True(t, cfg.Generation.AutoSelect)
}

func TestReadDatabase(t *testing.T) {
	got, err := readDatabase("-", strings.NewReader("CO2 rose 2%."))
	require.NoError(t, err)
	assert.Equal(t, "CO2 rose 2%.", got)

	path := filepath.Join(t.TempDir(), "db.txt")
	require.NoError(t, os.WriteFile(path, []byte("rows"), 0o644))
	got, err = readDatabase(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "rows", got)

	_, err = readDatabase(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.ErrorContains(t, err, "reading database text")
}

func TestProgressSink(t *testing.T) {
	var buf bytes.Buffer
	sink := progressSink(&buf)
	v := types.VariantConfig{ModelID: "m", Temperature: 0.5}

	sink.Emit(fanout.Event{SectionName: "Intro", VariantIndex: 0, Variant: v, Content: "three short words"})
	sink.Emit(fanout.Event{SectionName: "Intro", VariantIndex: 1, Variant: v, Err: errors.New("boom")})

	assert.Equal(t, "ok      Intro [0] m@0.5: 3 words\nfailed  Intro [1] m@0.5: boom\n", buf.String())
}
