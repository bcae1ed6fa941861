package handlers

import (
	"net/http"
	"testing"
	"time"

	"phishing-detection-api/models"
	"phishing-detection-api/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsParameterValidation(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		path string
		want int
	}{
		{"/analytics/history", http.StatusOK},
		{"/analytics/history?limit=1000&offset=5", http.StatusOK},
		{"/analytics/history?limit=0", http.StatusBadRequest},
		{"/analytics/history?limit=1001", http.StatusBadRequest},
		{"/analytics/history?offset=-1", http.StatusBadRequest},
		{"/analytics/history?limit=ten", http.StatusBadRequest},
		{"/analytics/daily-stats?days=30", http.StatusOK},
		{"/analytics/daily-stats?days=31", http.StatusBadRequest},
		{"/analytics/daily-stats?days=0", http.StatusBadRequest},
		{"/analytics/top-phishing-urls?limit=100", http.StatusOK},
		{"/analytics/top-phishing-urls?limit=101", http.StatusBadRequest},
		{"/analytics/daily-aggregates?days=90", http.StatusOK},
		{"/analytics/daily-aggregates?days=91", http.StatusBadRequest},
		{"/analytics/summary", http.StatusOK},
		{"/analytics/model-performance", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalyticsAfterPredictions(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/predict/url", map[string]string{"url": "http://secure-login.tk/verify"}, "")
	env.do(t, http.MethodPost, "/predict/url", map[string]string{"url": "https://example.com"}, "")
	env.do(t, http.MethodPost, "/predict/text", map[string]string{"text": "hi there"}, "")

	rec := env.do(t, http.MethodGet, "/analytics/history?limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.PredictionLog
	decode(t, rec, &history)
	require.Len(t, history, 2)
	assert.Equal(t, models.ModelTypeText, history[0].ModelType, "newest first")
	assert.NotContains(t, rec.Body.String(), "user_agent")

	rec = env.do(t, http.MethodGet, "/analytics/history?prediction=PHISHING", nil, "")
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "http://secure-login.tk/verify", *history[0].URL)

	rec = env.do(t, http.MethodGet, "/analytics/summary", nil, "")
	var summary services.Summary
	decode(t, rec, &summary)
	assert.Equal(t, int64(3), summary.TotalPredictions)
	assert.Equal(t, int64(1), summary.PhishingCount)
	assert.Equal(t, int64(2), summary.LegitimateCount)
	assert.Equal(t, int64(2), summary.ModelUsage["url"])
	assert.Equal(t, int64(0), summary.ModelUsage["llm_text"])

	rec = env.do(t, http.MethodGet, "/analytics/daily-stats?days=2", nil, "")
	var daily []services.DailyStats
	decode(t, rec, &daily)
	require.Len(t, daily, 2)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), daily[1].Date)
	assert.Equal(t, 3, daily[1].TotalPredictions)

	rec = env.do(t, http.MethodGet, "/analytics/top-phishing-urls", nil, "")
	var top []services.TopURL
	decode(t, rec, &top)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1), top[0].Count)

	rec = env.do(t, http.MethodGet, "/analytics/model-performance", nil, "")
	var perf map[string]services.ModelPerformance
	decode(t, rec, &perf)
	assert.Equal(t, int64(2), perf["url"].TotalPredictions)
	assert.InDelta(t, 50.0, perf["url"].PhishingPercentage, 1e-9)
	assert.Equal(t, int64(0), perf["hybrid"].TotalPredictions)

	rec = env.do(t, http.MethodGet, "/analytics/daily-aggregates", nil, "")
	assert.JSONEq(t, "[]", rec.Body.String())
}
