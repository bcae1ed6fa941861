// Package metrics holds the prometheus collectors shared by the API.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLM request outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

var (
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_api_predictions_total",
		Help: "Total number of predictions served, by model type and label.",
	}, []string{"model_type", "label"})
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_api_llm_requests_total",
		Help: "Total number of LLM analyses, by outcome.",
	}, []string{"outcome"})
	BlacklistHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_api_blacklist_hits_total",
		Help: "Total number of predictions answered from the blacklist.",
	})
	BlacklistAutoInserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_api_blacklist_auto_inserts_total",
		Help: "Total number of URLs blacklisted from confident model predictions.",
	})
	PredictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phishguard_api_prediction_duration_seconds",
		Help:    "Duration of a prediction request.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	}, []string{"model_type"})
)

// ObservePrediction records one served prediction.
func ObservePrediction(modelType, label string, seconds float64) {
	Predictions.WithLabelValues(modelType, strings.ToLower(label)).Inc()
	PredictionDuration.WithLabelValues(modelType).Observe(seconds)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics and /health on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
