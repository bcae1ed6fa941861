package handlers

import (
	"net/http"
	"testing"
	"time"

	"phishing-detection-api/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var root struct {
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
	decode(t, rec, &root)
	assert.Equal(t, apiVersion, root.Version)
	assert.Equal(t, "/predict/url", root.Endpoints["predict_url"])

	rec = env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	decode(t, rec, &health)
	assert.Equal(t, "healthy", health["status"])
	ts, err := time.Parse(time.RFC3339, health["timestamp"])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestModelsStatus(t *testing.T) {
	env := newTestEnv(t, "", classifier.KindURL)

	rec := env.do(t, http.MethodGet, "/models/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Models     map[string]classifier.KindStatus `json:"models"`
		Vectorizer bool                             `json:"vectorizer"`
	}
	decode(t, rec, &body)
	assert.Equal(t, classifier.KindStatus{Available: true, FeatureCount: 1}, body.Models["url"])
	assert.False(t, body.Models["text"].Available)
	assert.False(t, body.Vectorizer)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/predict/text", map[string]string{"text": "hello"}, "")

	rec := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "phishguard_api_predictions_total")
}

func TestPredictionStreamRequiresTokenAndRedis(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/ws/predictions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/ws/predictions?token=garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := registerUser(t, env, "viewer@example.com")
	rec = env.do(t, http.MethodGet, "/ws/predictions?token="+token, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
