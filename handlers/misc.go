package handlers

import (
	"net/http"
	"time"

	"phishing-detection-api/classifier"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

var endpoints = gin.H{
	"predict_url":        "/predict/url",
	"predict_text":       "/predict/text",
	"predict_hybrid":     "/predict/hybrid",
	"llm_predict_url":    "/llm-predict/url",
	"llm_predict_text":   "/llm-predict/text",
	"llm_predict_hybrid": "/llm-predict/hybrid",
	"llm_explain":        "/llm-predict/explain",
	"llm_status":         "/llm-predict/status",
	"analytics":          "/analytics/summary",
	"history":            "/analytics/history",
	"blacklist":          "/blacklist",
	"models_status":      "/models/status",
	"live":               "/ws/predictions",
	"metrics":            "/metrics",
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Phishing Detection API is running",
		"version":   apiVersion,
		"endpoints": endpoints,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func ModelsStatus(loader *classifier.Loader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"models":     loader.Status(),
			"vectorizer": loader.Vectorizer() != nil,
		})
	}
}
