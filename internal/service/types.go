// internal/service/types.go
package service

import (
	"context"
	"errors"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/model"
	"epos-bridge/pkg/driver"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnsupportedModel   = errors.New("unsupported printer model")
	ErrPrinterDisabled    = errors.New("printer is disabled")
	ErrTooManyCommands    = errors.New("too many commands in job")
	ErrPrinterUnavailable = errors.New("printer unavailable")
)

// DriverProvider creates drivers for stored printers
type DriverProvider interface {
	CreateDriver(printer *model.Printer) (driver.PrinterDriver, error)
	IsSupported(brand model.PrinterBrand, printerModel string) bool
}

// EventPublisher receives job lifecycle events
type EventPublisher interface {
	Publish(event model.PrinterEvent)
}

// PrintSubmitter runs command batches against printers. The HTTP,
// WebSocket and MQTT bridges all depend on this.
type PrintSubmitter interface {
	Submit(ctx context.Context, printerID string, batch *bridge.Batch, source model.JobSource) (*model.PrintJob, error)
}

// RegisterPrinterRequest represents printer registration request
type RegisterPrinterRequest struct {
	PrinterID        string                 `json:"printer_id"`
	Name             string                 `json:"name"`
	Brand            model.PrinterBrand     `json:"brand"`
	Model            string                 `json:"model"`
	ConnectionType   model.ConnectionType   `json:"connection_type"`
	ConnectionConfig map[string]interface{} `json:"connection_config"`
	PaperWidth       int                    `json:"paper_width,omitempty"`
	Enabled          *bool                  `json:"enabled,omitempty"`
}

// UpdatePrinterRequest changes selected printer fields
type UpdatePrinterRequest struct {
	Name             *string                `json:"name,omitempty"`
	Brand            *model.PrinterBrand    `json:"brand,omitempty"`
	Model            *string                `json:"model,omitempty"`
	ConnectionType   *model.ConnectionType  `json:"connection_type,omitempty"`
	ConnectionConfig map[string]interface{} `json:"connection_config,omitempty"`
	PaperWidth       *int                   `json:"paper_width,omitempty"`
	Enabled          *bool                  `json:"enabled,omitempty"`
}

// TestResult represents a printer connectivity check
type TestResult struct {
	Success      bool                  `json:"success"`
	Duration     string                `json:"duration"`
	ErrorMessage string                `json:"error_message,omitempty"`
	PrinterInfo  *driver.PrinterInfo   `json:"printer_info,omitempty"`
	Status       *driver.PrinterStatus `json:"status,omitempty"`
}
