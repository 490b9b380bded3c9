package utils

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"epos-bridge/internal/config"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger(&config.LoggingConfig{Level: "verbose", Output: "stdout"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bridge.log")
	logger, err := NewLogger(&config.LoggingConfig{
		Level:   "debug",
		Format:  "json",
		Output:  path,
		MaxSize: 1,
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hello", zap.String("printer_id", "P1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) || !strings.Contains(string(data), `"printer_id":"P1"`) {
		t.Errorf("unexpected log line: %s", data)
	}
}

func TestLogAPIRequestLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewServiceLogger(zap.New(core), "http-server")

	sl.LogAPIRequest("GET", "/health", "test", "127.0.0.1", http.StatusOK, time.Millisecond)
	sl.LogAPIRequest("POST", "/api/v1/printers", "test", "127.0.0.1", http.StatusNotFound, time.Millisecond)
	sl.LogAPIRequest("POST", "/api/v1/printers/P1/jobs", "test", "127.0.0.1", http.StatusBadGateway, time.Millisecond)

	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	entries := logs.All()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, want[i])
		}
		if e.ContextMap()["service"] != "http-server" {
			t.Errorf("entry %d missing service field", i)
		}
	}
}

func TestJobLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	jl := NewJobLogger(zap.New(core), "job-1", "P1", "http")

	jl.Start()
	jl.Error(errors.New("printer offline"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	failed := entries[1]
	if failed.Level != zapcore.ErrorLevel || failed.Message != "Print job failed" {
		t.Errorf("unexpected failure entry: %v %q", failed.Level, failed.Message)
	}
	ctx := failed.ContextMap()
	if ctx["job_id"] != "job-1" || ctx["printer_id"] != "P1" || ctx["success"] != false {
		t.Errorf("unexpected fields: %v", ctx)
	}
}

func TestLoggerWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	LoggerWithRequestID(base, "").Info("plain")
	LoggerWithRequestID(base, "req-9").Info("tagged")

	entries := logs.All()
	if _, ok := entries[0].ContextMap()["request_id"]; ok {
		t.Error("empty request id should not add a field")
	}
	if entries[1].ContextMap()["request_id"] != "req-9" {
		t.Errorf("request_id = %v", entries[1].ContextMap()["request_id"])
	}
}
