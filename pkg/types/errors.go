// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

var (
	// ErrMissingInput means the request lacks required input. Nothing is
	// generated.
	ErrMissingInput = errors.New("missing input")

	// ErrUpstreamUnresolved means a section cannot be built because the
	// previous section has no accepted or generated content.
	ErrUpstreamUnresolved = errors.New("upstream section unresolved")

	// ErrOutOfRange means a section index is outside the pipeline.
	ErrOutOfRange = errors.New("section index out of range")
)
