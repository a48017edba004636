package fetch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"time"

	"seoscout/internal/config"
)

// Sentinel errors for page fetch failures.
var (
	ErrUnavailable = errors.New("site unavailable")
	ErrRejected    = errors.New("site rejected request")
	ErrTimeout     = errors.New("site fetch timeout")
)

// Page is one fetched page. Elapsed covers the full request including body
// download and is zero for cache hits.
type Page struct {
	URL        string
	HTML       string
	StatusCode int
	SizeBytes  int64
	Elapsed    time.Duration
}

// Fetcher is the interface for retrieving pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// NewFetcher constructs the configured fetch engine.
// Called once at worker startup.
func NewFetcher(cfg config.FetchConfig) (Fetcher, error) {
	switch cfg.Engine {
	case "http":
		return NewHTTPFetcher(cfg), nil
	case "browserless":
		return NewBrowserlessFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetch engine %q: must be one of http, browserless", cfg.Engine)
	}
}

// URLKey computes a stable cache key fragment for a URL.
func URLKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("%x", hash[:16])
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
