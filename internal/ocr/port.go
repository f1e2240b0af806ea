// Package ocr defines the external text-recognition port and its adapters.
//
// The port is the only network call the analysis core makes. It is
// constructed once by the host process and injected into the extraction
// pipeline; the core never builds a hidden client of its own.
package ocr

import (
	"context"
	"errors"
)

// Port sends a byte buffer to an external text-recognition service and
// returns the recognized text. Implementations must not retry; callers
// apply their own timeout and cancellation through ctx.
type Port interface {
	Analyze(ctx context.Context, data []byte) (string, error)
}

var (
	// ErrConfigMissing signals that the port is not configured (no API
	// key or endpoint). Fatal: the pipeline produces no fallback text.
	ErrConfigMissing = errors.New("ocr-config-missing")

	// ErrEmpty signals that the service returned an empty result for a
	// non-empty input. Not retried inside the pipeline.
	ErrEmpty = errors.New("ocr-empty")
)

// PortFunc adapts a function to the Port interface, mainly for tests.
type PortFunc func(ctx context.Context, data []byte) (string, error)

func (f PortFunc) Analyze(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}
