package features

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/sync/singleflight"
)

// WhoisRecord is the subset of a WHOIS answer the features use.
type WhoisRecord struct {
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Registrar string     `json:"registrar,omitempty"`
	Country   string     `json:"country,omitempty"`
}

// WhoisLookup resolves registration data for a domain.
type WhoisLookup interface {
	Lookup(ctx context.Context, domain string) (WhoisRecord, error)
}

// Cache stores JSON-encodable values by key. A miss leaves dest untouched
// and returns nil.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

type likexianLookup struct {
	client *whois.Client
}

// NewWhoisLookup queries the registry WHOIS servers directly.
func NewWhoisLookup(timeout time.Duration) WhoisLookup {
	c := whois.NewClient()
	c.SetTimeout(timeout)
	return &likexianLookup{client: c}
}

func (l *likexianLookup) Lookup(ctx context.Context, domain string) (WhoisRecord, error) {
	type answer struct {
		raw string
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		raw, err := l.client.Whois(domain)
		ch <- answer{raw, err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return WhoisRecord{}, ctx.Err()
	case a := <-ch:
		if a.err != nil {
			return WhoisRecord{}, fmt.Errorf("whois %s: %w", domain, a.err)
		}
		raw = a.raw
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return WhoisRecord{}, fmt.Errorf("parse whois %s: %w", domain, err)
	}

	var rec WhoisRecord
	if info.Domain != nil {
		rec.CreatedAt = parseCreated(info.Domain.CreatedDate)
	}
	if info.Registrar != nil {
		rec.Registrar = info.Registrar.Name
	}
	if info.Registrant != nil {
		rec.Country = info.Registrant.Country
	}
	return rec, nil
}

func parseCreated(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// WhoisExtractor turns WHOIS data into domain_age_days, has_registrar and
// has_country. Concurrent lookups of one domain share a single query.
type WhoisExtractor struct {
	lookup WhoisLookup
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	now    func() time.Time
}

// NewWhoisExtractor accepts a nil cache.
func NewWhoisExtractor(lookup WhoisLookup, cache Cache, ttl time.Duration) *WhoisExtractor {
	return &WhoisExtractor{lookup: lookup, cache: cache, ttl: ttl, now: time.Now}
}

func (e *WhoisExtractor) Extract(ctx context.Context, rawURL string) *Set {
	s := NewSet()
	s.Put("domain_age_days", 0)
	s.Put("has_registrar", 0)
	s.Put("has_country", 0)

	domain := Hostname(rawURL)
	if domain == "" || e.lookup == nil {
		return s
	}

	rec, err := e.record(ctx, domain)
	if err != nil {
		slog.Debug("whois lookup failed", "domain", domain, "error", err)
		return s
	}

	if rec.CreatedAt != nil {
		s.Put("domain_age_days", math.Floor(e.now().Sub(*rec.CreatedAt).Hours()/24))
	}
	s.PutBool("has_registrar", rec.Registrar != "")
	s.PutBool("has_country", rec.Country != "")
	return s
}

type cachedWhois struct {
	Hit    bool        `json:"hit"`
	Record WhoisRecord `json:"record"`
}

func (e *WhoisExtractor) record(ctx context.Context, domain string) (WhoisRecord, error) {
	key := "whois:" + domain
	if e.cache != nil {
		var cached cachedWhois
		if err := e.cache.Get(ctx, key, &cached); err == nil && cached.Hit {
			return cached.Record, nil
		}
	}

	v, err, _ := e.group.Do(domain, func() (interface{}, error) {
		return e.lookup.Lookup(ctx, domain)
	})
	if err != nil {
		return WhoisRecord{}, err
	}
	rec := v.(WhoisRecord)

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, cachedWhois{Hit: true, Record: rec}, e.ttl); err != nil {
			slog.Debug("whois cache write failed", "domain", domain, "error", err)
		}
	}
	return rec, nil
}
