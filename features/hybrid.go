package features

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// HybridExtractor combines URL, WHOIS and page-text features.
type HybridExtractor struct {
	URL   *URLExtractor
	Whois *WhoisExtractor
	NLP   *NLPExtractor
	Pages *PageFetcher
}

// Extract builds the hybrid feature set. When text is nil the page is
// fetched; an empty text contributes no NLP features.
func (e *HybridExtractor) Extract(ctx context.Context, rawURL string, text *string) *Set {
	s := e.URL.Extract(rawURL)

	var (
		whoisSet *Set
		pageText string
	)
	if text != nil {
		pageText = *text
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if e.Whois != nil {
			whoisSet = e.Whois.Extract(gctx, rawURL)
		}
		return nil
	})
	if text == nil && e.Pages != nil {
		g.Go(func() error {
			pageText = e.Pages.Text(gctx, rawURL)
			return nil
		})
	}
	_ = g.Wait()

	if whoisSet == nil {
		whoisSet = NewSet()
		whoisSet.Put("domain_age_days", 0)
		whoisSet.Put("has_registrar", 0)
		whoisSet.Put("has_country", 0)
	}
	s.Merge(whoisSet)

	if pageText != "" && e.NLP != nil {
		s.Merge(e.NLP.Extract(pageText))
	}
	return s
}
