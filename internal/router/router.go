package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/config"
	"github.com/nevenhsu/survey-web-sub001/internal/handler"
	"github.com/nevenhsu/survey-web-sub001/internal/middleware"
	"github.com/nevenhsu/survey-web-sub001/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Survey  *handler.SurveyHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// Limiters groups the rate limiters so main can stop their janitors on shutdown.
type Limiters struct {
	Start  *middleware.RateLimiter
	Submit *middleware.RateLimiter
}

// NewLimiters builds the limiters from config.
func NewLimiters(cfg *config.Config) *Limiters {
	return &Limiters{
		// Session creation is cheap for clients and costs a Redis key each.
		Start:  middleware.NewRateLimiter(30, time.Minute, middleware.ByClientIP),
		Submit: middleware.NewRateLimiter(cfg.SubmitRateMin, time.Minute, middleware.ByClientIPAndParam("session_id")),
	}
}

// Stop releases the limiters' background goroutines.
func (l *Limiters) Stop() {
	l.Start.Stop()
	l.Submit.Stop()
}

// surveyMaxAge is how long clients may cache a survey definition.
const surveyMaxAge = 60

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, limiters *Limiters, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log), gin.Recovery())

	// Health check.
	router.GET("/health", middleware.NoStore(), handlers.System.Health)

	// ─── 1. Surveys (Public, Cacheable) ────────────────────────────────
	surveys := router.Group("/api/v1/surveys")
	{
		surveys.GET("/:survey_id",
			middleware.Brotli(),
			middleware.CacheControl(surveyMaxAge),
			handlers.Survey.GetSurvey,
		)
		surveys.POST("/:survey_id/sessions",
			limiters.Start.Middleware(),
			middleware.NoStore(),
			handlers.Session.StartSession,
		)
	}

	// ─── 2. Answer Sessions ────────────────────────────────────────────
	sessions := router.Group("/api/v1/sessions/:session_id")
	sessions.Use(middleware.NoStore(), middleware.Brotli())
	{
		sessions.GET("", handlers.Session.GetSession)
		sessions.PUT("/answers/:quiz_id", handlers.Session.PutAnswer)
		sessions.POST("/advance", handlers.Session.Advance)
		sessions.GET("/round", handlers.Session.GetRound)
		sessions.POST("/round/pick", handlers.Session.Pick)
		sessions.POST("/result/complete", handlers.Session.CompleteResult)
		sessions.POST("/submit", limiters.Submit.Middleware(), handlers.Session.Submit)
	}

	// ─── 3. WebSocket Stream ───────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	return router
}
