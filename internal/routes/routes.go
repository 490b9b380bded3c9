// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"epos-bridge/internal/config"
	"epos-bridge/internal/handler"
	"epos-bridge/internal/metrics"
	"epos-bridge/internal/middleware"
	"epos-bridge/internal/utils"
)

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Health    *handler.HealthHandler
	Printers  *handler.PrinterHandler
	Jobs      *handler.JobHandler
	WebSocket *handler.WebSocketHandler
}

// Router holds all dependencies for routing
type Router struct {
	config   *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	handlers Handlers
}

// NewRouter creates a new router instance
func NewRouter(config *config.Config, logger *zap.Logger, m *metrics.Metrics, handlers Handlers) *Router {
	return &Router{
		config:   config,
		logger:   logger,
		metrics:  m,
		handlers: handlers,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	if r.metrics != nil {
		router.Use(r.metrics.GinMiddleware())
	}
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	r.addHealthRoutes(router)

	apiV1 := router.Group("/api/v1")
	r.addPrinterRoutes(apiV1)
	r.addJobRoutes(apiV1)

	r.addWebSocketRoutes(router)

	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addHealthRoutes sets up health check routes
func (r *Router) addHealthRoutes(router *gin.Engine) {
	h := r.handlers.Health
	health := router.Group("")
	{
		health.GET("/health", h.HealthCheck)
		health.GET("/health/db", h.DatabaseHealthCheck)
		health.GET("/ready", h.ReadinessCheck)
		health.GET("/live", h.LivenessCheck)
	}
}

// addPrinterRoutes sets up printer management and job submission routes
func (r *Router) addPrinterRoutes(api *gin.RouterGroup) {
	ph := r.handlers.Printers
	jh := r.handlers.Jobs

	printers := api.Group("/printers")
	{
		printers.POST("", ph.RegisterPrinter)
		printers.GET("", ph.ListPrinters)

		printer := printers.Group("/:printer_id")
		{
			printer.GET("", ph.GetPrinter)
			printer.PUT("", ph.UpdatePrinter)
			printer.DELETE("", ph.DeletePrinter)
			printer.POST("/test", ph.TestPrinter)

			printer.POST("/jobs", jh.SubmitJob)
			printer.GET("/jobs", jh.ListPrinterJobs)
		}
	}
}

// addJobRoutes sets up job lookup routes
func (r *Router) addJobRoutes(api *gin.RouterGroup) {
	api.GET("/jobs/:job_id", r.handlers.Jobs.GetJob)
}

// addWebSocketRoutes sets up WebSocket routes
func (r *Router) addWebSocketRoutes(router *gin.Engine) {
	ws := router.Group("/ws")
	{
		ws.GET("/printers/:printer_id", r.handlers.WebSocket.HandlePrinterConnection)
		ws.GET("/events", r.handlers.WebSocket.HandleEventConnection)
	}
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
