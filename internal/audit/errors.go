package audit

import (
	"context"
	"errors"

	"seoscout/internal/ai"
	"seoscout/internal/fetch"
	"seoscout/internal/seo"
)

// IsRetryable reports whether a failed audit is worth another delivery.
// Transient upstream conditions qualify; bad input, rejected fetches and
// malformed AI output do not.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, fetch.ErrUnavailable),
		errors.Is(err, fetch.ErrTimeout),
		errors.Is(err, seo.ErrNoSamples),
		errors.Is(err, ai.ErrProviderUnavailable),
		errors.Is(err, ai.ErrInferenceTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
