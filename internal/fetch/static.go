package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// StaticFetcher downloads pages with a plain HTTP GET. It is the right
// backend for sites that ship their listings in the initial markup.
type StaticFetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

func NewStaticFetcher(timeout time.Duration, userAgent string, logger *zap.Logger) *StaticFetcher {
	return &StaticFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

func (f *StaticFetcher) Open(ctx context.Context, pageURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("get %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	f.logger.Debug("page fetched",
		zap.String("url", pageURL),
		zap.Int("status", resp.StatusCode))

	// Listing sites still serve legacy encodings like windows-1251; convert
	// to UTF-8 using the declared or sniffed charset before parsing.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}

	return ParseHTML(body)
}

func (f *StaticFetcher) Close() error { return nil }

func (f *StaticFetcher) Name() string { return "static" }
