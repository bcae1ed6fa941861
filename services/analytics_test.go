package services

import (
	"context"
	"testing"
	"time"

	"phishing-detection-api/database"
	"phishing-detection-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var analyticsNow = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func seedLogs(t *testing.T, db *gorm.DB) {
	t.Helper()
	logs := []models.PredictionLog{
		{URL: strPtr("http://a.tk"), Prediction: "Phishing", Confidence: 0.9, ModelType: models.ModelTypeURL, Timestamp: analyticsNow.Add(-1 * time.Hour)},
		{URL: strPtr("http://a.tk"), Prediction: "PHISHING", Confidence: 0.7, ModelType: models.ModelTypeLLMURL, Timestamp: analyticsNow.Add(-2 * time.Hour)},
		{URL: strPtr("http://b.ml"), Prediction: "Phishing", Confidence: 0.8, ModelType: models.ModelTypeHybrid, Timestamp: analyticsNow.Add(-26 * time.Hour)},
		{URL: strPtr("http://ok.com"), Prediction: "Legitimate", Confidence: 0.6, ModelType: models.ModelTypeURL, Timestamp: analyticsNow.Add(-27 * time.Hour)},
		{Text: strPtr("hello"), Prediction: "Legitimate", Confidence: 0.5, ModelType: models.ModelTypeText, Timestamp: analyticsNow.Add(-30 * 24 * time.Hour)},
		{Text: strPtr("err"), Prediction: "Error", Confidence: 0, ModelType: models.ModelTypeText, Timestamp: analyticsNow.Add(-3 * time.Hour)},
	}
	require.NoError(t, db.Create(&logs).Error)
}

func newTestAnalytics(t *testing.T) *AnalyticsService {
	db := database.OpenTestDB(t)
	seedLogs(t, db)
	svc := NewAnalyticsService(db)
	svc.now = func() time.Time { return analyticsNow }
	return svc
}

func TestAnalyticsHistory(t *testing.T) {
	svc := newTestAnalytics(t)
	ctx := context.Background()

	rows, err := svc.History(ctx, HistoryFilter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, 0.9, rows[0].Confidence, "newest first")

	rows, err = svc.History(ctx, HistoryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0.7, rows[0].Confidence)

	rows, err = svc.History(ctx, HistoryFilter{Limit: 100, ModelType: models.ModelTypeURL, Prediction: "phishing"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "http://a.tk", *rows[0].URL)
}

func TestAnalyticsSummary(t *testing.T) {
	svc := newTestAnalytics(t)

	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), s.TotalPredictions)
	assert.Equal(t, int64(3), s.PhishingCount)
	assert.Equal(t, int64(2), s.LegitimateCount)
	assert.InDelta(t, 50.0, s.PhishingPercentage, 1e-9)
	assert.InDelta(t, 3.5/6, s.AvgConfidence, 1e-9)
	assert.Equal(t, map[string]int64{
		"url": 2, "text": 2, "hybrid": 1, "llm_url": 1, "llm_text": 0, "llm_hybrid": 0,
	}, s.ModelUsage)
}

func TestAnalyticsSummaryEmpty(t *testing.T) {
	svc := NewAnalyticsService(database.OpenTestDB(t))
	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.TotalPredictions)
	assert.Equal(t, 0.0, s.PhishingPercentage)
	assert.Equal(t, 0.0, s.AvgConfidence)
	assert.Len(t, s.ModelUsage, 6)
}

func TestAnalyticsDailyStats(t *testing.T) {
	svc := newTestAnalytics(t)

	days, err := svc.DailyStats(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, DailyStats{Date: "2024-06-08"}, days[0])
	assert.Equal(t, "2024-06-09", days[1].Date)
	assert.Equal(t, 2, days[1].TotalPredictions)
	assert.Equal(t, 1, days[1].PhishingCount)
	assert.Equal(t, 1, days[1].LegitimateCount)
	assert.InDelta(t, 0.7, days[1].AvgConfidence, 1e-9)

	assert.Equal(t, "2024-06-10", days[2].Date)
	assert.Equal(t, 3, days[2].TotalPredictions)
	assert.Equal(t, 2, days[2].PhishingCount)
	assert.Equal(t, 0, days[2].LegitimateCount)
	assert.InDelta(t, 1.6/3, days[2].AvgConfidence, 1e-9)
}

func TestRollupDailyIgnoresOutsideWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []LogPoint{
		{Timestamp: start.Add(-time.Minute), Prediction: "Phishing", Confidence: 1},
		{Timestamp: start.Add(time.Minute), Prediction: "phishing", Confidence: 0.5},
		{Timestamp: start.Add(48 * time.Hour), Prediction: "Legitimate", Confidence: 1},
	}
	got := RollupDaily(points, start, 2)
	assert.Equal(t, []DailyStats{
		{Date: "2024-01-01", TotalPredictions: 1, PhishingCount: 1, AvgConfidence: 0.5},
		{Date: "2024-01-02"},
	}, got)
}

func TestAnalyticsTopPhishingURLs(t *testing.T) {
	svc := newTestAnalytics(t)

	top, err := svc.TopPhishingURLs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "http://a.tk", top[0].URL)
	assert.Equal(t, int64(2), top[0].Count)
	assert.InDelta(t, 0.8, top[0].AvgConfidence, 1e-9)
	assert.Equal(t, "http://b.ml", top[1].URL)

	top, err = svc.TopPhishingURLs(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestAnalyticsModelPerformance(t *testing.T) {
	svc := newTestAnalytics(t)

	perf, err := svc.ModelPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, perf, 3)

	url := perf["url"]
	assert.Equal(t, int64(2), url.TotalPredictions)
	assert.Equal(t, int64(1), url.PhishingCount)
	assert.Equal(t, int64(1), url.LegitimateCount)
	assert.InDelta(t, 50.0, url.PhishingPercentage, 1e-9)
	assert.InDelta(t, 0.75, url.AvgConfidence, 1e-9)

	text := perf["text"]
	assert.Equal(t, int64(2), text.TotalPredictions)
	assert.Equal(t, int64(0), text.PhishingCount)
	assert.Equal(t, int64(2), text.LegitimateCount, "legitimate is total minus phishing")
}

func TestAnalyticsDailyAggregates(t *testing.T) {
	db := database.OpenTestDB(t)
	svc := NewAnalyticsService(db)
	svc.now = func() time.Time { return analyticsNow }

	rows := []models.AnalyticsData{
		{Date: StartOfDay(analyticsNow), TotalPredictions: 3},
		{Date: StartOfDay(analyticsNow).AddDate(0, 0, -1), TotalPredictions: 2},
		{Date: StartOfDay(analyticsNow).AddDate(0, 0, -40), TotalPredictions: 9},
	}
	require.NoError(t, db.Create(&rows).Error)

	got, err := svc.DailyAggregates(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].TotalPredictions)
	assert.Equal(t, 3, got[1].TotalPredictions)
}
