package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"phishing-detection-api/classifier"
	"phishing-detection-api/llm"
	"phishing-detection-api/metrics"
	"phishing-detection-api/models"
	"phishing-detection-api/services"

	"github.com/gin-gonic/gin"
)

const mlOnlyModel = "ml-only"

type LLMHybridRequest struct {
	URL  string `json:"url" binding:"required"`
	Text string `json:"text" binding:"required"`
}

type ExplainRequest struct {
	URL        string `json:"url"`
	Text       string `json:"text"`
	Prediction string `json:"prediction" binding:"required"`
}

type LLMPredictionResponse struct {
	URL             *string   `json:"url,omitempty"`
	Text            *string   `json:"text,omitempty"`
	Prediction      string    `json:"prediction"`
	Confidence      float64   `json:"confidence"`
	Explanation     string    `json:"explanation"`
	RiskFactors     []string  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
	ModelType       string    `json:"model_type"`
	Timestamp       time.Time `json:"timestamp"`
	LLMModel        string    `json:"llm_model"`
}

type LLMStatusResponse struct {
	Available       bool     `json:"available"`
	CurrentModel    string   `json:"current_model"`
	AvailableModels []string `json:"available_models"`
	BaseURL         string   `json:"base_url"`
}

type ExplainResponse struct {
	Explanation        string    `json:"explanation"`
	ExplanationHTML    string    `json:"explanation_html"`
	OriginalPrediction string    `json:"original_prediction"`
	Timestamp          time.Time `json:"timestamp"`
}

type LLMPredictHandler struct {
	analyzer *llm.Analyzer
	detector *classifier.Detector
	logger   *services.PredictionLogger
}

func NewLLMPredictHandler(analyzer *llm.Analyzer, detector *classifier.Detector, logger *services.PredictionLogger) *LLMPredictHandler {
	return &LLMPredictHandler{analyzer: analyzer, detector: detector, logger: logger}
}

func (h *LLMPredictHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, LLMStatusResponse{
		Available:       h.analyzer.Available(ctx),
		CurrentModel:    h.analyzer.Model(),
		AvailableModels: h.analyzer.Models(ctx),
		BaseURL:         h.analyzer.BaseURL(),
	})
}

// PredictURL blends the URL classifier with the LLM verdict, or answers
// from the classifier alone when the LLM is down.
func (h *LLMPredictHandler) PredictURL(c *gin.Context) {
	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	ctx := c.Request.Context()
	slog.Info("llm url prediction requested", "url", req.URL)

	ml := h.detector.PredictURL(ctx, req.URL)
	var res llm.Analysis
	available := h.analyzer.Available(ctx)
	if available {
		verdict := h.analyzer.AnalyzeURL(ctx, req.URL)
		observeLLM(verdict)
		res.Prediction, res.Confidence = llm.CombineURL(ml, verdict)
		res.Explanation = fmt.Sprintf("Hybrid ML+LLM analysis (ML + %s)", h.analyzer.Model())
	} else {
		metrics.LLMRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		res = mlOnly(ml)
	}
	res.RiskFactors = []string{}
	res.Recommendations = []string{}

	h.respond(c, start, req.URL, "", res, models.ModelTypeLLMURL, available)
}

func (h *LLMPredictHandler) PredictText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	ctx := c.Request.Context()
	text := *req.Text
	slog.Info("llm text prediction requested", "length", len(text))

	var res llm.Analysis
	available := h.analyzer.Available(ctx)
	if available {
		res = h.analyzer.AnalyzeText(ctx, text)
		observeLLM(res)
	} else {
		metrics.LLMRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		res = mlOnly(h.detector.PredictText(ctx, text))
	}

	h.respond(c, start, "", text, res, models.ModelTypeLLMText, available)
}

func (h *LLMPredictHandler) PredictHybrid(c *gin.Context) {
	var req LLMHybridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	ctx := c.Request.Context()
	slog.Info("llm hybrid prediction requested", "url", req.URL, "length", len(req.Text))

	var res llm.Analysis
	available := h.analyzer.Available(ctx)
	if available {
		res = h.analyzer.AnalyzeHybrid(ctx, req.URL, req.Text)
		observeLLM(res)
	} else {
		metrics.LLMRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		text := req.Text
		res = mlOnly(h.detector.PredictHybrid(ctx, req.URL, &text))
	}

	h.respond(c, start, req.URL, req.Text, res, models.ModelTypeLLMHybrid, available)
}

func (h *LLMPredictHandler) Explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if !h.analyzer.Available(ctx) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "LLM service unavailable"})
		return
	}

	explanation, err := h.analyzer.Explain(ctx, req.Prediction, req.URL, req.Text)
	if err != nil {
		slog.Error("generate explanation", "error", err)
		metrics.LLMRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate explanation"})
		return
	}
	metrics.LLMRequests.WithLabelValues(metrics.OutcomeOK).Inc()

	c.JSON(http.StatusOK, ExplainResponse{
		Explanation:        llm.Sanitize(explanation),
		ExplanationHTML:    llm.RenderMarkdown(explanation),
		OriginalPrediction: req.Prediction,
		Timestamp:          time.Now().UTC(),
	})
}

func (h *LLMPredictHandler) respond(c *gin.Context, start time.Time, url, text string, res llm.Analysis, modelType string, available bool) {
	res = res.Sanitized()
	slog.Info("llm prediction result", "model_type", modelType, "prediction", res.Prediction, "confidence", res.Confidence)

	h.logger.Log(c.Request.Context(), services.PredictionRecord{
		URL:        url,
		Text:       text,
		Prediction: res.Prediction,
		Confidence: res.Confidence,
		ModelType:  modelType,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	metrics.ObservePrediction(modelType, res.Prediction, time.Since(start).Seconds())

	llmModel := mlOnlyModel
	if available {
		llmModel = h.analyzer.Model()
	}
	c.JSON(http.StatusOK, LLMPredictionResponse{
		URL:             optionalString(url),
		Text:            optionalString(text),
		Prediction:      res.Prediction,
		Confidence:      res.Confidence,
		Explanation:     res.Explanation,
		RiskFactors:     nonNil(res.RiskFactors),
		Recommendations: nonNil(res.Recommendations),
		ModelType:       strings.TrimPrefix(modelType, "llm_"),
		Timestamp:       time.Now().UTC(),
		LLMModel:        llmModel,
	})
}

func mlOnly(ml classifier.Result) llm.Analysis {
	return llm.Analysis{
		Prediction:      strings.ToUpper(ml.Label),
		Confidence:      ml.Confidence,
		Explanation:     "ML-only analysis (LLM unavailable)",
		RiskFactors:     []string{},
		Recommendations: []string{},
	}
}

func observeLLM(a llm.Analysis) {
	outcome := metrics.OutcomeOK
	if a.Failed {
		outcome = metrics.OutcomeFailed
	}
	metrics.LLMRequests.WithLabelValues(outcome).Inc()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
