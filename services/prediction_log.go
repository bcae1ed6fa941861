package services

import (
	"context"
	"log/slog"
	"time"

	"phishing-detection-api/models"

	"gorm.io/gorm"
)

// PredictionEvent is published on ChannelPredictions for every logged
// prediction.
type PredictionEvent struct {
	ID         uint      `json:"id"`
	URL        *string   `json:"url,omitempty"`
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"`
	ModelType  string    `json:"model_type"`
	Timestamp  time.Time `json:"timestamp"`
}

// PredictionRecord carries one prediction to be logged.
type PredictionRecord struct {
	URL        string
	Text       string
	Prediction string
	Confidence float64
	ModelType  string
	IPAddress  string
	UserAgent  string
}

type PredictionLogger struct {
	db    *gorm.DB
	cache *CacheService
}

func NewPredictionLogger(db *gorm.DB, cache *CacheService) *PredictionLogger {
	return &PredictionLogger{db: db, cache: cache}
}

// Log stores the record and publishes it. Failures are logged, never
// returned: a prediction is answered even when it cannot be recorded.
func (l *PredictionLogger) Log(ctx context.Context, r PredictionRecord) *models.PredictionLog {
	entry := models.PredictionLog{
		URL:        optional(r.URL),
		Text:       optional(r.Text),
		Prediction: r.Prediction,
		Confidence: r.Confidence,
		ModelType:  r.ModelType,
		Timestamp:  time.Now().UTC(),
		IPAddress:  optional(r.IPAddress),
		UserAgent:  optional(r.UserAgent),
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.Error("log prediction", "model_type", r.ModelType, "error", err)
		return nil
	}

	if l.cache != nil {
		event := PredictionEvent{
			ID:         entry.ID,
			URL:        entry.URL,
			Prediction: entry.Prediction,
			Confidence: entry.Confidence,
			ModelType:  entry.ModelType,
			Timestamp:  entry.Timestamp,
		}
		if err := l.cache.Publish(ctx, ChannelPredictions, event); err != nil {
			slog.Warn("publish prediction", "error", err)
		}
	}
	return &entry
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
