package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"phishing-detection-api/models"
	"phishing-detection-api/services"

	"github.com/gin-gonic/gin"
)

const (
	summaryCacheKey = "analytics:summary"
	summaryCacheTTL = 30 * time.Second
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	cache     *services.CacheService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService, cache *services.CacheService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, cache: cache}
}

func (h *AnalyticsHandler) History(c *gin.Context) {
	p, err := ParsePagination(c, 100, 1000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.analytics.History(c.Request.Context(), services.HistoryFilter{
		Limit:      p.Limit,
		Offset:     p.Offset,
		ModelType:  c.Query("model_type"),
		Prediction: c.Query("prediction"),
	})
	if err != nil {
		internalError(c, "history", err)
		return
	}
	if rows == nil {
		rows = []models.PredictionLog{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	var cached *services.Summary
	if err := h.cache.Get(ctx, summaryCacheKey, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	summary, err := h.analytics.Summary(ctx)
	if err != nil {
		internalError(c, "summary", err)
		return
	}
	go func() {
		if err := h.cache.Set(context.Background(), summaryCacheKey, summary, summaryCacheTTL); err != nil {
			slog.Debug("summary cache write failed", "error", err)
		}
	}()

	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) DailyStats(c *gin.Context) {
	days, err := queryInt(c, "days", 7, 1, 30)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.analytics.DailyStats(c.Request.Context(), days)
	if err != nil {
		internalError(c, "daily stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) TopPhishingURLs(c *gin.Context) {
	limit, err := queryInt(c, "limit", 10, 1, 100)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	top, err := h.analytics.TopPhishingURLs(c.Request.Context(), limit)
	if err != nil {
		internalError(c, "top phishing urls", err)
		return
	}
	c.JSON(http.StatusOK, top)
}

func (h *AnalyticsHandler) ModelPerformance(c *gin.Context) {
	perf, err := h.analytics.ModelPerformance(c.Request.Context())
	if err != nil {
		internalError(c, "model performance", err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

func (h *AnalyticsHandler) DailyAggregates(c *gin.Context) {
	days, err := queryInt(c, "days", 30, 1, 90)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.analytics.DailyAggregates(c.Request.Context(), days)
	if err != nil {
		internalError(c, "daily aggregates", err)
		return
	}
	if rows == nil {
		rows = []models.AnalyticsData{}
	}
	c.JSON(http.StatusOK, rows)
}

func internalError(c *gin.Context, op string, err error) {
	slog.Error("request failed", "op", op, "path", c.Request.URL.Path, "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
