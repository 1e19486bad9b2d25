// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/docforge/pkg/types"
)

const previewLen = 200

type loggingClient struct {
	next     Client
	provider types.Provider
	logger   *zap.Logger
}

// WithLogging wraps c so every call logs its request size, duration, and a
// preview of the response.
func WithLogging(c Client, provider types.Provider, logger *zap.Logger) Client {
	return &loggingClient{next: c, provider: provider, logger: logger}
}

func (l *loggingClient) Invoke(ctx context.Context, req Request) (string, error) {
	fields := []zap.Field{
		zap.String("provider", string(l.provider)),
		zap.String("model", req.ModelID),
		zap.Float64("temperature", req.Temperature),
	}
	l.logger.Debug("calling model", append(fields,
		zap.Int("system_length", len(req.System)),
		zap.Int("prompt_length", len(req.Human)),
	)...)

	start := time.Now()
	content, err := l.next.Invoke(ctx, req)
	fields = append(fields, zap.Duration("duration", time.Since(start)))

	if err != nil {
		l.logger.Warn("model call failed", append(fields,
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err),
		)...)
		return "", err
	}

	l.logger.Debug("model responded", append(fields,
		zap.Int("response_length", len(content)),
		zap.String("preview", preview(content)),
	)...)
	return content, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
