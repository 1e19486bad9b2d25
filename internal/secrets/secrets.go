// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Recognised key files: gemini-api-key, openai-api-key, anthropic-api-key,
// http-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/docforge/pkg/types"
)

// Key file names.
const (
	GeminiKey    = "gemini-api-key"
	OpenAIKey    = "openai-api-key"
	AnthropicKey = "anthropic-api-key"
	HTTPKey      = "http-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies keys into providers where no key is configured yet. Keys set
// in the config file or environment take precedence.
func Apply(secrets map[string]string, providers *types.ProvidersConfig) {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = secrets[name]
		}
	}
	fill(&providers.Gemini.APIKey, GeminiKey)
	fill(&providers.OpenAI.APIKey, OpenAIKey)
	fill(&providers.Anthropic.APIKey, AnthropicKey)
	fill(&providers.HTTP.APIKey, HTTPKey)
}
