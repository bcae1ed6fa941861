package main

import (
	"context"
	"time"

	"phishing-detection-api/services"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct {
	pool *pgxpool.Pool
}

func (s *pgStore) Points(ctx context.Context, start, end time.Time) ([]services.LogPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT "timestamp", prediction, confidence
		FROM prediction_logs
		WHERE "timestamp" >= $1 AND "timestamp" < $2
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []services.LogPoint
	for rows.Next() {
		var p services.LogPoint
		if err := rows.Scan(&p.Timestamp, &p.Prediction, &p.Confidence); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *pgStore) UpsertDay(ctx context.Context, day time.Time, d services.DailyStats) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analytics_data ("date", total_predictions, phishing_count, legitimate_count, avg_confidence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ("date") DO UPDATE SET
			total_predictions = EXCLUDED.total_predictions,
			phishing_count = EXCLUDED.phishing_count,
			legitimate_count = EXCLUDED.legitimate_count,
			avg_confidence = EXCLUDED.avg_confidence
	`, day.UTC(), d.TotalPredictions, d.PhishingCount, d.LegitimateCount, d.AvgConfidence)
	return err
}
