package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"epos-bridge/internal/config"
	"epos-bridge/internal/handler"
	"epos-bridge/internal/metrics"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Security: config.SecurityConfig{AllowedOrigins: []string{"*"}},
		App:      config.AppConfig{Name: "epos-bridge", Version: "test", Environment: "test"},
	}
	logger := zap.NewNop()
	ws := handler.NewWebSocketHandler(nil, nil, nil, &cfg.Security, logger)

	return NewRouter(cfg, logger, metrics.New(), Handlers{
		Health:    handler.NewHealthHandler(nil, ws, cfg, logger),
		Printers:  handler.NewPrinterHandler(nil, logger),
		Jobs:      handler.NewJobHandler(nil, logger),
		WebSocket: ws,
	}).SetupRouter()
}

func TestSetupRouterRegistersRoutes(t *testing.T) {
	engine := newTestEngine(t)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /health/db",
		"GET /ready",
		"GET /live",
		"POST /api/v1/printers",
		"GET /api/v1/printers",
		"GET /api/v1/printers/:printer_id",
		"PUT /api/v1/printers/:printer_id",
		"DELETE /api/v1/printers/:printer_id",
		"POST /api/v1/printers/:printer_id/test",
		"POST /api/v1/printers/:printer_id/jobs",
		"GET /api/v1/printers/:printer_id/jobs",
		"GET /api/v1/jobs/:job_id",
		"GET /ws/printers/:printer_id",
		"GET /ws/events",
		"GET /metrics",
		"GET /swagger/*any",
		"GET /docs",
	} {
		if !registered[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestRouterMiddleware(t *testing.T) {
	engine := newTestEngine(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/live status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "epos_bridge_http_request_duration_seconds") {
		t.Error("http request histogram not exported after a request")
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Errorf("/docs status = %d", rec.Code)
	}
}
