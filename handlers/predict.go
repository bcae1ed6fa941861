package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"phishing-detection-api/classifier"
	"phishing-detection-api/config"
	"phishing-detection-api/metrics"
	"phishing-detection-api/models"
	"phishing-detection-api/services"

	"github.com/gin-gonic/gin"
)

type URLRequest struct {
	URL string `json:"url" binding:"required"`
}

// TextRequest accepts an empty text; only a missing field is rejected.
type TextRequest struct {
	Text *string `json:"text" binding:"required"`
}

type HybridRequest struct {
	URL  string  `json:"url" binding:"required"`
	Text *string `json:"text"`
}

type PredictionResponse struct {
	URL         *string   `json:"url,omitempty"`
	Text        *string   `json:"text,omitempty"`
	Prediction  string    `json:"prediction"`
	Confidence  float64   `json:"confidence"`
	ModelType   string    `json:"model_type"`
	Timestamp   time.Time `json:"timestamp"`
	Blacklisted bool      `json:"blacklisted,omitempty"`
}

type PredictHandler struct {
	detector  *classifier.Detector
	blacklist *services.BlacklistService
	logger    *services.PredictionLogger
	cfg       config.BlacklistConfig
}

func NewPredictHandler(detector *classifier.Detector, blacklist *services.BlacklistService, logger *services.PredictionLogger, cfg config.BlacklistConfig) *PredictHandler {
	return &PredictHandler{detector: detector, blacklist: blacklist, logger: logger, cfg: cfg}
}

func (h *PredictHandler) PredictURL(c *gin.Context) {
	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	ctx := c.Request.Context()
	slog.Info("predict url requested", "url", req.URL)

	res, blacklisted := h.fromBlacklist(ctx, req.URL)
	if !blacklisted {
		res = h.detector.PredictURL(ctx, req.URL)
		h.autoBlacklist(ctx, req.URL, res)
	}
	slog.Info("predict url result", "url", req.URL, "prediction", res.Label, "confidence", res.Confidence, "blacklisted", blacklisted)

	h.respond(c, start, newRecord(req.URL, "", res, models.ModelTypeURL), blacklisted)
}

func (h *PredictHandler) PredictText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	text := *req.Text
	slog.Info("predict text requested", "length", len(text))

	res := h.detector.PredictText(c.Request.Context(), text)
	slog.Info("predict text result", "prediction", res.Label, "confidence", res.Confidence)

	h.respond(c, start, newRecord("", text, res, models.ModelTypeText), false)
}

// PredictHybrid fetches the page only when the text field is absent.
func (h *PredictHandler) PredictHybrid(c *gin.Context) {
	var req HybridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	ctx := c.Request.Context()
	text := req.Text
	slog.Info("predict hybrid requested", "url", req.URL, "text_present", text != nil)

	res, blacklisted := h.fromBlacklist(ctx, req.URL)
	if !blacklisted {
		res = h.detector.PredictHybrid(ctx, req.URL, text)
		h.autoBlacklist(ctx, req.URL, res)
	}
	slog.Info("predict hybrid result", "url", req.URL, "prediction", res.Label, "confidence", res.Confidence, "blacklisted", blacklisted)

	var body string
	if text != nil {
		body = *text
	}
	h.respond(c, start, newRecord(req.URL, body, res, models.ModelTypeHybrid), blacklisted)
}

// newRecord builds the log record of a classifier result.
func newRecord(url, text string, res classifier.Result, modelType string) services.PredictionRecord {
	return services.PredictionRecord{
		URL:        url,
		Text:       text,
		Prediction: res.Label,
		Confidence: res.Confidence,
		ModelType:  modelType,
	}
}

func (h *PredictHandler) respond(c *gin.Context, start time.Time, rec services.PredictionRecord, blacklisted bool) {
	rec.IPAddress = c.ClientIP()
	rec.UserAgent = c.Request.UserAgent()
	h.logger.Log(c.Request.Context(), rec)
	metrics.ObservePrediction(rec.ModelType, rec.Prediction, time.Since(start).Seconds())

	c.JSON(http.StatusOK, PredictionResponse{
		URL:         optionalString(rec.URL),
		Text:        optionalString(rec.Text),
		Prediction:  rec.Prediction,
		Confidence:  rec.Confidence,
		ModelType:   rec.ModelType,
		Timestamp:   time.Now().UTC(),
		Blacklisted: blacklisted,
	})
}

func (h *PredictHandler) fromBlacklist(ctx context.Context, url string) (classifier.Result, bool) {
	if h.blacklist == nil || !h.cfg.ShortCircuit {
		return classifier.Result{}, false
	}
	entry, err := h.blacklist.Lookup(ctx, url)
	if err != nil {
		slog.Warn("blacklist lookup failed", "url", url, "error", err)
		return classifier.Result{}, false
	}
	if entry == nil || !entry.IsPhishing {
		return classifier.Result{}, false
	}
	metrics.BlacklistHits.Inc()
	return classifier.Result{Label: classifier.LabelPhishing, Confidence: entry.Confidence}, true
}

func (h *PredictHandler) autoBlacklist(ctx context.Context, url string, res classifier.Result) {
	if h.blacklist == nil || h.cfg.AutoThreshold <= 0 {
		return
	}
	if res.Label != classifier.LabelPhishing || res.Confidence < h.cfg.AutoThreshold {
		return
	}
	_, err := h.blacklist.Upsert(ctx, services.BlacklistEntry{
		URL:        url,
		IsPhishing: true,
		Confidence: res.Confidence,
		Source:     models.SourceModel,
	})
	switch {
	case errors.Is(err, services.ErrInvalidURL):
		slog.Debug("not blacklisting unparseable url", "url", url)
	case err != nil:
		slog.Warn("auto blacklist failed", "url", url, "error", err)
	default:
		metrics.BlacklistAutoInserts.Inc()
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
