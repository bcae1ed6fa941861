package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phishing-detection-api/classifier"
	"phishing-detection-api/config"
	"phishing-detection-api/database"
	"phishing-detection-api/llm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

// testLoader registers one-feature logistic models:
// url flags suspicious TLDs, text grows with word count, hybrid flags
// plain http.
func testLoader(t *testing.T, kinds ...classifier.Kind) *classifier.Loader {
	t.Helper()
	specs := map[classifier.Kind]struct {
		feature   string
		coef      float64
		intercept float64
	}{
		classifier.KindURL:    {"suspicious_tld", 10, -5},
		classifier.KindText:   {"word_count", 1, -3},
		classifier.KindHybrid: {"has_https", -4, 2},
	}

	loader := classifier.NewLoader(nil)
	for _, kind := range kinds {
		s := specs[kind]
		m, err := classifier.NewLogistic([][]float64{{s.coef}}, []float64{s.intercept}, []int{0, 1})
		require.NoError(t, err)
		loader.Register(kind, m, nil, []string{s.feature})
	}
	return loader
}

func newTestEnv(t *testing.T, llmBaseURL string, kinds ...classifier.Kind) *testEnv {
	t.Helper()
	if len(kinds) == 0 {
		kinds = classifier.Kinds
	}
	return newTestEnvWithDetector(t, llmBaseURL, classifier.NewDetector(testLoader(t, kinds...), nil, nil))
}

func newTestEnvWithDetector(t *testing.T, llmBaseURL string, detector *classifier.Detector) *testEnv {
	t.Helper()
	if llmBaseURL == "" {
		llmBaseURL = "http://127.0.0.1:1"
	}

	cfg := &config.Config{
		JWT:       config.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		CORS:      config.CORSConfig{AllowedOrigins: "*"},
		Blacklist: config.BlacklistConfig{AutoThreshold: 0.95, ShortCircuit: true},
	}
	db := database.OpenTestDB(t)
	router := NewRouter(Deps{
		Config:   cfg,
		DB:       db,
		Detector: detector,
		Analyzer: llm.NewAnalyzer(llm.NewClient(config.LLMConfig{
			BaseURL: llmBaseURL,
			Model:   "llama2",
			Timeout: 5 * time.Second,
		})),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testEnv{router: router, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handlers-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

// fakeOllama answers /api/tags and /api/generate with a fixed response.
func fakeOllama(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama2:latest"}]}`))
		case "/api/generate":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": answer, "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
