// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"epos-bridge/internal/model"
)

var (
	ErrPrinterNotFound = errors.New("printer not found")
	ErrPrinterExists   = errors.New("printer already exists")
	ErrJobNotFound     = errors.New("print job not found")
)

// PrinterRepository defines printer data access operations
type PrinterRepository interface {
	Create(ctx context.Context, printer *model.Printer) error
	GetByPrinterID(ctx context.Context, printerID string) (*model.Printer, error)
	Update(ctx context.Context, printer *model.Printer) error
	Delete(ctx context.Context, printerID string) error
	List(ctx context.Context, filter *PrinterFilter) ([]*model.Printer, error)
	TouchLastPrint(ctx context.Context, printerID string) error
}

// JobRepository defines print job data access operations
type JobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error
	Complete(ctx context.Context, job *model.PrintJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error)
	ListByPrinter(ctx context.Context, printerID string, limit int) ([]*model.PrintJob, error)
}

// PrinterFilter represents printer listing filters
type PrinterFilter struct {
	Brand          *model.PrinterBrand   `json:"brand,omitempty"`
	ConnectionType *model.ConnectionType `json:"connection_type,omitempty"`
	Enabled        *bool                 `json:"enabled,omitempty"`
}
