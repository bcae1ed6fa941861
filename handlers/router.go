package handlers

import (
	"log/slog"
	"net/http"

	"phishing-detection-api/classifier"
	"phishing-detection-api/config"
	"phishing-detection-api/llm"
	"phishing-detection-api/metrics"
	"phishing-detection-api/middleware"
	"phishing-detection-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the router needs.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Cache    *services.CacheService
	Detector *classifier.Detector
	Analyzer *llm.Analyzer
	Logger   *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	auth := services.NewAuthService(d.DB, d.Config.JWT)
	blacklist := services.NewBlacklistService(d.DB, d.Cache)
	predictions := services.NewPredictionLogger(d.DB, d.Cache)
	limiter := middleware.NewRateLimiter(d.Config.RateLimit)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			d.Logger.Error("panic", "path", c.Request.URL.Path, "panic", recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}),
		middleware.SetupCORS(d.Config.CORS),
	)

	router.GET("/", Root)
	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/models/status", ModelsStatus(d.Detector.Loader()))
	router.GET("/ws/predictions", PredictionStream(d.Cache, auth))

	predict := NewPredictHandler(d.Detector, blacklist, predictions, d.Config.Blacklist)
	pg := router.Group("/predict", middleware.RateLimit(limiter))
	pg.POST("/url", predict.PredictURL)
	pg.POST("/text", predict.PredictText)
	pg.POST("/hybrid", predict.PredictHybrid)

	llmPredict := NewLLMPredictHandler(d.Analyzer, d.Detector, predictions)
	lg := router.Group("/llm-predict")
	lg.GET("/status", llmPredict.Status)
	lg.POST("/url", middleware.RateLimit(limiter), llmPredict.PredictURL)
	lg.POST("/text", middleware.RateLimit(limiter), llmPredict.PredictText)
	lg.POST("/hybrid", middleware.RateLimit(limiter), llmPredict.PredictHybrid)
	lg.POST("/explain", middleware.RateLimit(limiter), llmPredict.Explain)

	analytics := NewAnalyticsHandler(services.NewAnalyticsService(d.DB), d.Cache)
	ag := router.Group("/analytics")
	ag.GET("/history", analytics.History)
	ag.GET("/summary", analytics.Summary)
	ag.GET("/daily-stats", analytics.DailyStats)
	ag.GET("/top-phishing-urls", analytics.TopPhishingURLs)
	ag.GET("/model-performance", analytics.ModelPerformance)
	ag.GET("/daily-aggregates", analytics.DailyAggregates)

	authHandler := NewAuthHandler(auth)
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	bl := NewBlacklistHandler(blacklist)
	bg := router.Group("/blacklist")
	bg.GET("", bl.List)
	bg.GET("/check", bl.Check)
	bg.POST("", middleware.RequireAuth(auth), bl.Create)
	bg.DELETE("/:id", middleware.RequireAuth(auth), middleware.RequireAdmin(), bl.Delete)

	return router
}
