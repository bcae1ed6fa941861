package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePredictionLowercasesLabel(t *testing.T) {
	before := testutil.ToFloat64(Predictions.WithLabelValues("url", "phishing"))
	ObservePrediction("url", "Phishing", 0.2)
	ObservePrediction("url", "PHISHING", 0.3)

	if got := testutil.ToFloat64(Predictions.WithLabelValues("url", "phishing")); got != before+2 {
		t.Errorf("predictions = %v, want %v", got, before+2)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	BlacklistHits.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "phishguard_api_blacklist_hits_total") {
		t.Error("metrics output missing blacklist hits counter")
	}
}
