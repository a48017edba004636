package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seoscout/internal/config"
)

// BrowserlessFetcher renders pages through a browserless instance, so
// JavaScript-heavy sites return their hydrated markup.
type BrowserlessFetcher struct {
	baseURL      string
	token        string
	client       *http.Client
	maxBodyBytes int64
}

// NewBrowserlessFetcher creates a fetch engine backed by browserless's
// /content API.
func NewBrowserlessFetcher(cfg config.FetchConfig) *BrowserlessFetcher {
	return &BrowserlessFetcher{
		baseURL:      strings.TrimRight(cfg.BrowserlessURL, "/"),
		token:        cfg.BrowserlessToken,
		client:       &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

type browserlessRequest struct {
	URL string `json:"url"`
}

func (f *BrowserlessFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	payload, err := json.Marshal(browserlessRequest{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	u := fmt.Sprintf("%s/content?token=%s", f.baseURL, url.QueryEscape(f.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, classifyError(err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: browserless status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: browserless status %d", ErrRejected, resp.StatusCode)
	}

	return &Page{
		URL:        rawURL,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		SizeBytes:  int64(len(body)),
		Elapsed:    elapsed,
	}, nil
}

// Compile-time check that BrowserlessFetcher implements Fetcher.
var _ Fetcher = (*BrowserlessFetcher)(nil)
