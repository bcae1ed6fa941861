package features

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gregjones/httpcache"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxPageBytes     = 5 << 20
)

// PageFetcher downloads a page and reduces it to its visible text.
type PageFetcher struct {
	client  *http.Client
	maxText int
}

// NewPageFetcher returns a fetcher whose responses are cached in memory
// according to their HTTP caching headers.
func NewPageFetcher(timeout time.Duration, maxText int) *PageFetcher {
	transport := httpcache.NewMemoryCacheTransport()
	return &PageFetcher{
		client:  &http.Client{Transport: transport, Timeout: timeout},
		maxText: maxText,
	}
}

// NewPageFetcherWithClient is used by tests to inject a client.
func NewPageFetcherWithClient(client *http.Client, maxText int) *PageFetcher {
	return &PageFetcher{client: client, maxText: maxText}
}

// Text returns the visible text of rawURL, or "" on any failure.
func (f *PageFetcher) Text(ctx context.Context, rawURL string) string {
	text, err := f.Fetch(ctx, rawURL)
	if err != nil {
		slog.Debug("page text unavailable", "url", rawURL, "error", err)
		return ""
	}
	return text
}

func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}
	doc.Find("script, style").Remove()

	return truncateRunes(CleanText(doc.Text()), f.maxText), nil
}

// CleanText trims every line, splits lines on double spaces and joins the
// non-empty pieces with single spaces.
func CleanText(text string) string {
	var chunks []string
	for _, line := range splitLines(text) {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, " ")
}

func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return true
		}
		return false
	})
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
