// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genclient invokes text generation backends with a model, a
// temperature, and a two-part (system, human) prompt. Every backend
// normalizes its response to a single content string and reports failures
// as *GenerationError. A call is made exactly once; callers decide what a
// failure means.
package genclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/openai/openai-go"
	"google.golang.org/genai"

	"github.com/pdiddy/docforge/internal/httputil"
	"github.com/pdiddy/docforge/pkg/types"
)

// Request is one generation call.
type Request struct {
	Provider    types.Provider
	ModelID     string
	Temperature float64
	System      string
	Human       string
}

// Client abstracts a generation backend so tests can supply a mock.
type Client interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Kind classifies a generation failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindTimeout
	KindRateLimited
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "unexpected"
	}
}

// GenerationError is the typed failure of a single call.
type GenerationError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Detail == "" && e.Err != nil {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Detail)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// invalidResponse builds an InvalidResponse error.
func invalidResponse(format string, args ...any) *GenerationError {
	return &GenerationError{Kind: KindInvalidResponse, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnexpected when err is not a
// *GenerationError.
func KindOf(err error) Kind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnexpected
}

// Classify converts a backend error into a *GenerationError. Errors that are
// already classified pass through unchanged.
func Classify(err error) *GenerationError {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindUnexpected
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		kind = KindTimeout
	default:
		if code, ok := statusCode(err); ok {
			switch code {
			case http.StatusTooManyRequests:
				kind = KindRateLimited
			case http.StatusRequestTimeout, http.StatusGatewayTimeout:
				kind = KindTimeout
			}
		}
	}
	return &GenerationError{Kind: kind, Detail: err.Error(), Err: err}
}

// statusCode extracts an HTTP status from the error types the backends
// return.
func statusCode(err error) (int, bool) {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	var oe *openai.Error
	if errors.As(err, &oe) {
		return oe.StatusCode, true
	}
	var ge genai.APIError
	if errors.As(err, &ge) {
		return ge.Code, true
	}
	return 0, false
}
