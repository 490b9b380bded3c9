// internal/utils/logger.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"epos-bridge/internal/config"
)

const defaultLogFile = "./logs/epos-bridge.log"

// NewLogger creates a zap logger from the logging section of the config
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	writeSyncer, err := writeSyncerFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig(cfg.Format))
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig(cfg.Format))
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func encoderConfig(format string) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	ec.LevelKey = "level"
	ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	ec.CallerKey = "caller"
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	ec.MessageKey = "message"
	ec.StacktraceKey = "stacktrace"

	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}
	return ec
}

func writeSyncerFor(cfg *config.LoggingConfig) (zapcore.WriteSyncer, error) {
	switch cfg.Output {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}

	filename := cfg.Output
	if filename == "" {
		filename = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// rotated file output
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// PrinterLogger wraps zap.Logger with printer-specific fields
type PrinterLogger struct {
	*zap.Logger
	printerID string
}

// NewPrinterLogger creates a printer-specific logger
func NewPrinterLogger(baseLogger *zap.Logger, printerID, brand, model string) *PrinterLogger {
	return &PrinterLogger{
		Logger: baseLogger.With(
			zap.String("printer_id", printerID),
			zap.String("brand", brand),
			zap.String("model", model),
			zap.String("component", "printer"),
		),
		printerID: printerID,
	}
}

// LogConnection logs connect and disconnect attempts
func (pl *PrinterLogger) LogConnection(action string, err error) {
	if err != nil {
		pl.Error("Printer connection event",
			zap.String("action", action),
			zap.Bool("success", false),
			zap.Error(err),
		)
		return
	}
	pl.Info("Printer connection event",
		zap.String("action", action),
		zap.Bool("success", true),
	)
}

// LogTransmission logs one buffer flush to the device
func (pl *PrinterLogger) LogTransmission(bytes int, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.Int("bytes", bytes),
		zap.Duration("duration", duration),
	}
	if err != nil {
		pl.Error("Print data transmission failed", append(fields, zap.Error(err))...)
		return
	}
	pl.Debug("Print data transmitted", fields...)
}

// JobLogger provides structured logging for one print job
type JobLogger struct {
	logger    *zap.Logger
	startTime time.Time
}

// NewJobLogger creates a job-specific logger
func NewJobLogger(baseLogger *zap.Logger, jobID, printerID, source string) *JobLogger {
	return &JobLogger{
		logger: baseLogger.With(
			zap.String("job_id", jobID),
			zap.String("printer_id", printerID),
			zap.String("source", source),
			zap.String("component", "job"),
		),
		startTime: time.Now(),
	}
}

// Logger exposes the underlying job-scoped logger
func (jl *JobLogger) Logger() *zap.Logger {
	return jl.logger
}

// Start logs job start
func (jl *JobLogger) Start(fields ...zap.Field) {
	jl.logger.Info("Print job started", append([]zap.Field{
		zap.Time("start_time", jl.startTime),
	}, fields...)...)
}

// Success logs job completion
func (jl *JobLogger) Success(fields ...zap.Field) {
	jl.logger.Info("Print job completed", append([]zap.Field{
		zap.Duration("duration", time.Since(jl.startTime)),
		zap.Bool("success", true),
	}, fields...)...)
}

// Error logs job failure
func (jl *JobLogger) Error(err error, fields ...zap.Field) {
	jl.logger.Error("Print job failed", append([]zap.Field{
		zap.Duration("duration", time.Since(jl.startTime)),
		zap.Bool("success", false),
		zap.Error(err),
	}, fields...)...)
}

// ServiceLogger provides service-level logging functionality
type ServiceLogger struct {
	*zap.Logger
	serviceName string
}

// NewServiceLogger creates a service-specific logger
func NewServiceLogger(baseLogger *zap.Logger, serviceName string) *ServiceLogger {
	return &ServiceLogger{
		Logger: baseLogger.With(
			zap.String("service", serviceName),
			zap.String("component", "service"),
		),
		serviceName: serviceName,
	}
}

// LogServiceStart logs service startup
func (sl *ServiceLogger) LogServiceStart(version, environment string) {
	sl.Info("Service starting",
		zap.String("version", version),
		zap.String("environment", environment),
	)
}

// LogServiceStop logs service shutdown
func (sl *ServiceLogger) LogServiceStop(reason string) {
	sl.Info("Service stopping", zap.String("reason", reason))
}

// LogAPIRequest logs HTTP API requests
func (sl *ServiceLogger) LogAPIRequest(method, path, userAgent, clientIP string, statusCode int, duration time.Duration) {
	level := zapcore.InfoLevel
	if statusCode >= 400 {
		level = zapcore.WarnLevel
	}
	if statusCode >= 500 {
		level = zapcore.ErrorLevel
	}

	if ce := sl.Check(level, "API request"); ce != nil {
		ce.Write(
			zap.String("method", method),
			zap.String("path", path),
			zap.String("user_agent", userAgent),
			zap.String("client_ip", clientIP),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		)
	}
}

// LoggerWithRequestID adds request ID to logger
func LoggerWithRequestID(logger *zap.Logger, requestID string) *zap.Logger {
	if requestID == "" {
		return logger
	}
	return logger.With(zap.String("request_id", requestID))
}
