// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Provider names a generation backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderHTTP      Provider = "http"
	ProviderEcho      Provider = "echo"
)

// AIConfig holds connection settings for one generation backend.
type AIConfig struct {
	// APIKey is the authentication key. Usually loaded from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// ProvidersConfig groups backend settings by provider name.
type ProvidersConfig struct {
	Gemini    AIConfig `json:"gemini" yaml:"gemini" mapstructure:"gemini"`
	OpenAI    AIConfig `json:"openai" yaml:"openai" mapstructure:"openai"`
	Anthropic AIConfig `json:"anthropic" yaml:"anthropic" mapstructure:"anthropic"`

	// HTTP is a self-hosted JSON gateway. BaseURL is the full endpoint.
	HTTP AIConfig `json:"http" yaml:"http" mapstructure:"http"`
}

// GenerationConfig holds settings for the section generation pipeline.
type GenerationConfig struct {
	// Provider is the backend used by variants that do not name one (default gemini).
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// AutoSelect promotes the first successful variant of a section to
	// winner when downstream generation needs its content and the user has
	// not picked one.
	AutoSelect bool `json:"auto_select" yaml:"auto_select" mapstructure:"auto_select"`

	// Variants is the default variant slot list applied to every section.
	Variants []VariantConfig `json:"variants" yaml:"variants" mapstructure:"variants"`

	// SectionVariants overrides Variants for specific section names.
	SectionVariants map[string][]VariantConfig `json:"section_variants,omitempty" yaml:"section_variants,omitempty" mapstructure:"section_variants"`

	// SectionsFile is an optional YAML outline replacing the default sections.
	SectionsFile string `json:"sections_file,omitempty" yaml:"sections_file,omitempty" mapstructure:"sections_file"`

	// CallTimeout bounds a single model call (default 2m). Zero disables it.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout" mapstructure:"call_timeout"`

	// OutputDir is where exported documents are written.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// VariantsFor returns the variant slots for the named section. Override
// keys match case-insensitively because viper lowercases map keys.
func (c GenerationConfig) VariantsFor(section string) []VariantConfig {
	if v := c.SectionVariants[section]; len(v) > 0 {
		return v
	}
	for name, v := range c.SectionVariants {
		if len(v) > 0 && strings.EqualFold(name, section) {
			return v
		}
	}
	return c.Variants
}

// ContextConfig controls how much database text is placed in each prompt.
type ContextConfig struct {
	// MaxChars is the database excerpt budget per prompt. Texts shorter than
	// this are sent whole; longer texts are indexed and the best-matching
	// chunks are sent instead. Zero sends the whole text.
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`

	// ChunkChars is the target chunk size when indexing (default 1200).
	ChunkChars int `json:"chunk_chars" yaml:"chunk_chars" mapstructure:"chunk_chars"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Config groups all docforge configuration.
type Config struct {
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Providers  ProvidersConfig  `json:"providers" yaml:"providers" mapstructure:"providers"`
	Context    ContextConfig    `json:"context" yaml:"context" mapstructure:"context"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
}
