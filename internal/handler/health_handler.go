// internal/handler/health_handler.go
package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"epos-bridge/internal/config"
	"epos-bridge/internal/utils"
)

// DatabaseChecker reports database reachability and pool usage
type DatabaseChecker interface {
	Health(ctx context.Context) error
	Stats() sql.DBStats
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db        DatabaseChecker
	sockets   *WebSocketHandler
	config    *config.Config
	startTime time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. sockets may be nil.
func NewHealthHandler(db DatabaseChecker, sockets *WebSocketHandler, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sockets:   sockets,
		config:    config,
		startTime: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// HealthCheck reports database and bridge status
// @Summary Health check
// @Description Service health including database reachability and open bridge sockets
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks: map[string]CheckResult{
			"database": h.checkDatabase(c.Request.Context()),
		},
	}
	if h.sockets != nil {
		health.Checks["websocket"] = h.checkSockets()
	}

	statusCode := http.StatusOK
	for _, check := range health.Checks {
		if check.Status != statusHealthy {
			health.Status = statusUnhealthy
			statusCode = http.StatusServiceUnavailable
		}
	}
	c.JSON(statusCode, health)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckResult {
	stats := h.db.Stats()
	pool := map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
	}
	if err := h.db.Health(ctx); err != nil {
		return CheckResult{Status: statusUnhealthy, Message: err.Error(), Data: pool}
	}
	return CheckResult{Status: statusHealthy, Data: pool}
}

func (h *HealthHandler) checkSockets() CheckResult {
	ws := h.sockets.GetConnectionStats()
	return CheckResult{
		Status: statusHealthy,
		Data: map[string]interface{}{
			"connections": ws.TotalConnections,
			"by_type":     ws.ByType,
			"by_printer":  ws.ByPrinter,
		},
	}
}

// DatabaseHealthCheck checks database connectivity
// @Summary Database health check
// @Description Ping the database and report pool statistics
// @Tags Health
// @Produce json
// @Success 200 {object} utils.APIResponse "Database is healthy"
// @Failure 503 {object} utils.APIResponse "Database is unhealthy"
// @Router /health/db [get]
func (h *HealthHandler) DatabaseHealthCheck(c *gin.Context) {
	start := time.Now()
	check := h.checkDatabase(c.Request.Context())
	if check.Status != statusHealthy {
		h.logger.Error("Database health check failed", zap.String("error", check.Message))
		utils.FailureResponse(c, http.StatusServiceUnavailable, "Database unhealthy", errors.New(check.Message), check.Data)
		return
	}

	stats := h.db.Stats()
	check.Data["wait_count"] = stats.WaitCount
	check.Data["wait_duration"] = stats.WaitDuration.String()
	check.Data["response_time_ms"] = time.Since(start).Milliseconds()
	utils.SuccessResponse(c, http.StatusOK, "Database is healthy", check)
}

// ReadinessCheck reports whether jobs can be accepted
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	// jobs are persisted before printing, so no database means no jobs
	if check := h.checkDatabase(c.Request.Context()); check.Status != statusHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database not available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
