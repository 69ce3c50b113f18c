package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/response"
)

// HealthChecker pings the backing stores.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, error)
}

// QueueStats reports worker backlog.
type QueueStats interface {
	DraftQueueLen(ctx context.Context) (int64, error)
}

// SystemHandler reports service health and runtime figures.
type SystemHandler struct {
	checker   HealthChecker
	queues    QueueStats
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(checker HealthChecker, queues QueueStats, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checker:   checker,
		queues:    queues,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status     string            `json:"status"`
	Stores     map[string]string `json:"stores"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	DraftQueue int64             `json:"draftQueue"`
}

// Health godoc
// GET /health
// Returns 200 when Postgres and Redis answer, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	stores, err := h.checker.Check(ctx)
	report := healthReport{
		Status:     "ok",
		Stores:     stores,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("Health check failed")
		report.Status = "degraded"
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrUnavailable, report)
		return
	}
	if n, err := h.queues.DraftQueueLen(ctx); err == nil {
		report.DraftQueue = n
	}
	response.Success(c, http.StatusOK, report)
}
