package ical

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/foyerapp/calsync/internal/logging"
	"github.com/foyerapp/calsync/internal/model"
)

// Fetcher retrieves iCal subscription feeds over HTTP with a fixed
// per-request timeout.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a feed fetcher. A zero timeout falls back to 15s.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch downloads the feed at url and returns its body. Network failures
// and non-2xx responses surface as a TransportError scoped to this fetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &model.TransportError{Op: "fetch ical feed", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("ical feed fetch failed", logging.URL(url), logging.Err(err))
		return "", &model.TransportError{Op: "fetch ical feed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("ical feed fetch non-2xx", logging.URL(url), "status", resp.StatusCode)
		return "", &model.TransportError{Op: "fetch ical feed", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.TransportError{Op: "read ical feed", Err: err}
	}

	f.logger.Debug("ical feed fetched", logging.URL(url), "bytes", len(body))
	return string(body), nil
}
