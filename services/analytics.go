package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phishing-detection-api/models"

	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

const phishingCase = "CASE WHEN LOWER(prediction) = 'phishing' THEN 1 ELSE 0 END"

// Model types reported by the summary and the performance breakdown.
var (
	UsageModelTypes = []string{
		models.ModelTypeURL, models.ModelTypeText, models.ModelTypeHybrid,
		models.ModelTypeLLMURL, models.ModelTypeLLMText, models.ModelTypeLLMHybrid,
	}
	PerformanceModelTypes = []string{models.ModelTypeURL, models.ModelTypeText, models.ModelTypeHybrid}
)

type HistoryFilter struct {
	Limit      int
	Offset     int
	ModelType  string
	Prediction string
}

type Summary struct {
	TotalPredictions   int64            `json:"total_predictions"`
	PhishingCount      int64            `json:"phishing_count"`
	LegitimateCount    int64            `json:"legitimate_count"`
	PhishingPercentage float64          `json:"phishing_percentage"`
	AvgConfidence      float64          `json:"avg_confidence"`
	ModelUsage         map[string]int64 `json:"model_usage"`
}

type DailyStats struct {
	Date             string  `json:"date"`
	TotalPredictions int     `json:"total_predictions"`
	PhishingCount    int     `json:"phishing_count"`
	LegitimateCount  int     `json:"legitimate_count"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

type TopURL struct {
	URL           string  `json:"url"`
	Count         int64   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

type ModelPerformance struct {
	TotalPredictions   int64   `json:"total_predictions"`
	PhishingCount      int64   `json:"phishing_count"`
	LegitimateCount    int64   `json:"legitimate_count"`
	PhishingPercentage float64 `json:"phishing_percentage"`
	AvgConfidence      float64 `json:"avg_confidence"`
}

// LogPoint is the part of a prediction log the daily rollup needs.
type LogPoint struct {
	Timestamp  time.Time
	Prediction string
	Confidence float64
}

type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// History returns logs newest first.
func (s *AnalyticsService) History(ctx context.Context, f HistoryFilter) ([]models.PredictionLog, error) {
	q := s.db.WithContext(ctx).Model(&models.PredictionLog{})
	if f.ModelType != "" {
		q = q.Where("model_type = ?", f.ModelType)
	}
	if f.Prediction != "" {
		q = q.Where("LOWER(prediction) = ?", strings.ToLower(f.Prediction))
	}

	var rows []models.PredictionLog
	err := q.Order(`"timestamp" DESC`).Order("id DESC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return rows, nil
}

func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	var totals struct {
		Total      int64
		Phishing   int64
		Legitimate int64
		AvgConf    *float64
	}
	err := s.db.WithContext(ctx).Model(&models.PredictionLog{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(" + phishingCase + "), 0) AS phishing, " +
			"COALESCE(SUM(CASE WHEN LOWER(prediction) = 'legitimate' THEN 1 ELSE 0 END), 0) AS legitimate, " +
			"AVG(confidence) AS avg_conf").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	var usage []struct {
		ModelType string
		Count     int64
	}
	err = s.db.WithContext(ctx).Model(&models.PredictionLog{}).
		Select("model_type, COUNT(*) AS count").
		Where("model_type IN ?", UsageModelTypes).
		Group("model_type").
		Scan(&usage).Error
	if err != nil {
		return nil, fmt.Errorf("query model usage: %w", err)
	}

	out := &Summary{
		TotalPredictions: totals.Total,
		PhishingCount:    totals.Phishing,
		LegitimateCount:  totals.Legitimate,
		ModelUsage:       make(map[string]int64, len(UsageModelTypes)),
	}
	if totals.AvgConf != nil {
		out.AvgConfidence = *totals.AvgConf
	}
	if totals.Total > 0 {
		out.PhishingPercentage = float64(totals.Phishing) / float64(totals.Total) * 100
	}
	for _, mt := range UsageModelTypes {
		out.ModelUsage[mt] = 0
	}
	for _, u := range usage {
		out.ModelUsage[u.ModelType] = u.Count
	}
	return out, nil
}

// DailyStats returns one row per UTC day for the last days days, ending
// today, oldest first. Days without predictions are included with zeros.
func (s *AnalyticsService) DailyStats(ctx context.Context, days int) ([]DailyStats, error) {
	start := StartOfDay(s.now()).AddDate(0, 0, -(days - 1))
	end := start.AddDate(0, 0, days)

	points, err := s.points(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return RollupDaily(points, start, days), nil
}

func (s *AnalyticsService) points(ctx context.Context, start, end time.Time) ([]LogPoint, error) {
	var points []LogPoint
	err := s.db.WithContext(ctx).Model(&models.PredictionLog{}).
		Select(`"timestamp", prediction, confidence`).
		Where(`"timestamp" >= ? AND "timestamp" < ?`, start.UTC(), end.UTC()).
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("query daily points: %w", err)
	}
	return points, nil
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RollupDaily buckets points into days UTC days beginning at start.
// Points outside the window are ignored.
func RollupDaily(points []LogPoint, start time.Time, days int) []DailyStats {
	start = StartOfDay(start)
	confidences := make([][]float64, days)
	out := make([]DailyStats, days)
	for i := range out {
		out[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
	}

	for _, p := range points {
		i := int(StartOfDay(p.Timestamp).Sub(start).Hours() / 24)
		if i < 0 || i >= days {
			continue
		}
		out[i].TotalPredictions++
		switch strings.ToLower(p.Prediction) {
		case "phishing":
			out[i].PhishingCount++
		case "legitimate":
			out[i].LegitimateCount++
		}
		confidences[i] = append(confidences[i], p.Confidence)
	}

	for i := range out {
		if len(confidences[i]) > 0 {
			out[i].AvgConfidence = stat.Mean(confidences[i], nil)
		}
	}
	return out
}

func (s *AnalyticsService) TopPhishingURLs(ctx context.Context, limit int) ([]TopURL, error) {
	var rows []TopURL
	err := s.db.WithContext(ctx).Model(&models.PredictionLog{}).
		Select("url, COUNT(id) AS count, AVG(confidence) AS avg_confidence").
		Where("LOWER(prediction) = ? AND url IS NOT NULL", "phishing").
		Group("url").
		Order("count DESC").Order("url").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query top phishing urls: %w", err)
	}
	if rows == nil {
		rows = []TopURL{}
	}
	return rows, nil
}

func (s *AnalyticsService) ModelPerformance(ctx context.Context) (map[string]ModelPerformance, error) {
	var rows []struct {
		ModelType string
		Total     int64
		Phishing  int64
		AvgConf   float64
	}
	err := s.db.WithContext(ctx).Model(&models.PredictionLog{}).
		Select("model_type, COUNT(*) AS total, COALESCE(SUM(" + phishingCase + "), 0) AS phishing, AVG(confidence) AS avg_conf").
		Where("model_type IN ?", PerformanceModelTypes).
		Group("model_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query model performance: %w", err)
	}

	out := make(map[string]ModelPerformance, len(PerformanceModelTypes))
	for _, mt := range PerformanceModelTypes {
		out[mt] = ModelPerformance{}
	}
	for _, r := range rows {
		perf := ModelPerformance{
			TotalPredictions: r.Total,
			PhishingCount:    r.Phishing,
			LegitimateCount:  r.Total - r.Phishing,
			AvgConfidence:    r.AvgConf,
		}
		if r.Total > 0 {
			perf.PhishingPercentage = float64(r.Phishing) / float64(r.Total) * 100
		}
		out[r.ModelType] = perf
	}
	return out, nil
}

// DailyAggregates returns the stored rollups of the last days days, oldest
// first.
func (s *AnalyticsService) DailyAggregates(ctx context.Context, days int) ([]models.AnalyticsData, error) {
	since := StartOfDay(s.now()).AddDate(0, 0, -(days - 1))
	var rows []models.AnalyticsData
	err := s.db.WithContext(ctx).
		Where(`"date" >= ?`, since).
		Order(`"date" ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query daily aggregates: %w", err)
	}
	return rows, nil
}
