package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct {
	pool *pgxpool.Pool
}

func (s *pgStore) Upsert(ctx context.Context, e feedEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO url_blacklist (url, domain, is_phishing, confidence, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (url) DO UPDATE SET
			domain = EXCLUDED.domain,
			is_phishing = EXCLUDED.is_phishing,
			confidence = EXCLUDED.confidence,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at
	`, e.URL, e.Domain, e.IsPhishing, e.Confidence, e.Source, e.ReceivedAt)
	return err
}
