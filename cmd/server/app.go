// cmd/server/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"epos-bridge/internal/command"
	"epos-bridge/internal/config"
	"epos-bridge/internal/database"
	"epos-bridge/internal/driver"
	"epos-bridge/internal/events"
	"epos-bridge/internal/handler"
	"epos-bridge/internal/ingest/mqtt"
	"epos-bridge/internal/metrics"
	"epos-bridge/internal/protocol"
	"epos-bridge/internal/repository"
	"epos-bridge/internal/routes"
	"epos-bridge/internal/service"
	"epos-bridge/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB
	metrics  *metrics.Metrics
	eventBus *events.EventBus

	// Repositories
	printerRepo repository.PrinterRepository
	jobRepo     repository.JobRepository

	// Driver registry
	driverRegistry *driver.Registry

	// Services
	printerService *service.PrinterService
	printService   *service.PrintService

	wsHandler  *handler.WebSocketHandler
	mqttBridge *mqtt.Bridge
}

// NewApplication wires every component from cfg
func NewApplication(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	app := &Application{
		config:   cfg,
		logger:   logger,
		metrics:  metrics.New(),
		eventBus: events.NewEventBus(logger),
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.initializeRepositories()
	app.initializeDriverRegistry()
	app.initializeServices()
	app.initializeServer()

	if cfg.MQTT.Enabled {
		app.mqttBridge = mqtt.NewBridge(&cfg.MQTT, app.printService, app.eventBus, logger)
	}

	return app, nil
}

// initializeDatabase sets up database connection and runs migrations
func (app *Application) initializeDatabase() error {
	db, err := database.NewConnection(&app.config.Database, app.logger)
	if err != nil {
		return err
	}
	app.database = db

	if app.config.Database.AutoMigrate {
		if err := database.NewMigrator(db, app.logger).Up(); err != nil {
			db.Close()
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeRepositories creates repository instances
func (app *Application) initializeRepositories() {
	app.printerRepo = repository.NewPrinterRepository(app.database, app.logger)
	app.jobRepo = repository.NewJobRepository(app.database, app.logger)
}

// initializeDriverRegistry sets up the printer driver registry on top of
// the transport factory
func (app *Application) initializeDriverRegistry() {
	protocols := protocol.NewFactory(transportDefaults(&app.config.Printer), app.logger)
	app.driverRegistry = driver.NewRegistry(protocols, app.logger)
	driver.RegisterDefaultDrivers(app.driverRegistry, app.logger)

	app.logger.Info("Driver registry initialized successfully",
		zap.Int("registered_drivers", len(app.driverRegistry.ListDrivers())),
	)
}

// transportDefaults maps printer config onto the values the protocol
// factory fills in for missing connection settings
func transportDefaults(cfg *config.PrinterConfig) protocol.Defaults {
	d := protocol.StandardDefaults()
	d.TCPPort = cfg.TCP.Port
	d.ConnectTimeout = cfg.TCP.ConnectTimeout
	d.ReadTimeout = cfg.TCP.ReadTimeout
	d.WriteTimeout = cfg.TCP.WriteTimeout
	d.KeepAlive = cfg.TCP.KeepAlive
	d.Serial.BaudRate = cfg.Serial.BaudRate
	d.Serial.DataBits = cfg.Serial.DataBits
	d.Serial.StopBits = cfg.Serial.StopBits
	d.Serial.Parity = cfg.Serial.Parity
	d.Serial.Timeout = cfg.Serial.Timeout
	d.USBEndpoint = cfg.USB.Endpoint
	d.USBTimeout = cfg.USB.Timeout
	return d
}

// initializeServices creates service instances
func (app *Application) initializeServices() {
	app.printerService = service.NewPrinterService(
		app.printerRepo,
		app.driverRegistry,
		app.config,
		app.logger,
	)

	app.printService = service.NewPrintService(
		app.printerRepo,
		app.jobRepo,
		app.driverRegistry,
		command.NewTranslator(app.logger),
		app.eventBus,
		app.metrics,
		app.config,
		app.logger,
	)
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	app.wsHandler = handler.NewWebSocketHandler(
		app.printerService,
		app.printService,
		app.eventBus,
		&app.config.Security,
		app.logger,
	)

	router := routes.NewRouter(app.config, app.logger, app.metrics, routes.Handlers{
		Health:    handler.NewHealthHandler(app.database, app.wsHandler, app.config, app.logger),
		Printers:  handler.NewPrinterHandler(app.printerService, app.logger),
		Jobs:      handler.NewJobHandler(app.printService, app.logger),
		WebSocket: app.wsHandler,
	}).SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}
}

// Run serves until ctx is cancelled or a component fails, then shuts
// everything down
func (app *Application) Run(ctx context.Context) error {
	serviceLogger := utils.NewServiceLogger(app.logger, "epos-bridge")
	serviceLogger.LogServiceStart(app.config.App.Version, app.config.App.Environment)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.eventBus.Run(gctx)
	})

	g.Go(func() error {
		app.logger.Info("Starting HTTP server", zap.String("address", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		serviceLogger.LogServiceStop("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()

		app.wsHandler.Shutdown()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("HTTP server shutdown error", zap.Error(err))
			return err
		}
		app.logger.Info("HTTP server stopped")
		return nil
	})

	if app.mqttBridge != nil {
		g.Go(func() error {
			return app.mqttBridge.Run(gctx)
		})
	}

	return g.Wait()
}

// Close releases the database connection
func (app *Application) Close() {
	if app.database == nil {
		return
	}
	if err := app.database.Close(); err != nil {
		app.logger.Error("Database close error", zap.Error(err))
		return
	}
	app.logger.Info("Database connection closed")
}
