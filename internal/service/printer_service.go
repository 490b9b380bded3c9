// internal/service/printer_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"epos-bridge/internal/config"
	"epos-bridge/internal/model"
	"epos-bridge/internal/protocol"
	"epos-bridge/internal/repository"
	"epos-bridge/internal/utils"
)

// PrinterService handles printer registration and connectivity checks
type PrinterService struct {
	printerRepo repository.PrinterRepository
	drivers     DriverProvider
	config      *config.Config
	logger      *utils.ServiceLogger
}

// NewPrinterService creates a new printer service
func NewPrinterService(
	printerRepo repository.PrinterRepository,
	drivers DriverProvider,
	cfg *config.Config,
	logger *zap.Logger,
) *PrinterService {
	return &PrinterService{
		printerRepo: printerRepo,
		drivers:     drivers,
		config:      cfg,
		logger:      utils.NewServiceLogger(logger, "printer-service"),
	}
}

// RegisterPrinter validates and stores a new printer
func (s *PrinterService) RegisterPrinter(ctx context.Context, req *RegisterPrinterRequest) (*model.Printer, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	now := time.Now()
	printer := &model.Printer{
		ID:               uuid.New(),
		PrinterID:        req.PrinterID,
		Name:             req.Name,
		Brand:            req.Brand,
		Model:            strings.ToUpper(req.Model),
		ConnectionType:   req.ConnectionType,
		ConnectionConfig: model.JSONObject(req.ConnectionConfig),
		PaperWidth:       req.PaperWidth,
		Enabled:          true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.Enabled != nil {
		printer.Enabled = *req.Enabled
	}
	if printer.PaperWidth == 0 {
		printer.PaperWidth = s.config.Printer.PaperWidth
	}

	if err := s.printerRepo.Create(ctx, printer); err != nil {
		s.logger.Logger.Error("Failed to register printer",
			zap.String("printer_id", req.PrinterID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Logger.Info("Printer registered",
		zap.String("printer_id", printer.PrinterID),
		zap.String("brand", string(printer.Brand)),
		zap.String("model", printer.Model),
		zap.String("connection_type", string(printer.ConnectionType)),
	)
	return printer, nil
}

// GetPrinter returns a printer by its identifier
func (s *PrinterService) GetPrinter(ctx context.Context, printerID string) (*model.Printer, error) {
	return s.printerRepo.GetByPrinterID(ctx, printerID)
}

// ListPrinters returns printers matching filter
func (s *PrinterService) ListPrinters(ctx context.Context, filter *repository.PrinterFilter) ([]*model.Printer, error) {
	return s.printerRepo.List(ctx, filter)
}

// UpdatePrinter applies the non-nil fields of req
func (s *PrinterService) UpdatePrinter(ctx context.Context, printerID string, req *UpdatePrinterRequest) (*model.Printer, error) {
	printer, err := s.printerRepo.GetByPrinterID(ctx, printerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		printer.Name = *req.Name
	}
	if req.Brand != nil {
		printer.Brand = *req.Brand
	}
	if req.Model != nil {
		printer.Model = strings.ToUpper(*req.Model)
	}
	if req.ConnectionType != nil {
		printer.ConnectionType = *req.ConnectionType
	}
	if req.ConnectionConfig != nil {
		printer.ConnectionConfig = model.JSONObject(req.ConnectionConfig)
	}
	if req.PaperWidth != nil {
		printer.PaperWidth = *req.PaperWidth
	}
	if req.Enabled != nil {
		printer.Enabled = *req.Enabled
	}

	if err := s.validatePrinter(printer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	printer.UpdatedAt = time.Now()
	if err := s.printerRepo.Update(ctx, printer); err != nil {
		return nil, err
	}

	s.logger.Logger.Info("Printer updated", zap.String("printer_id", printerID))
	return printer, nil
}

// DeletePrinter removes a printer and its job history
func (s *PrinterService) DeletePrinter(ctx context.Context, printerID string) error {
	if err := s.printerRepo.Delete(ctx, printerID); err != nil {
		return err
	}
	s.logger.Logger.Info("Printer deleted", zap.String("printer_id", printerID))
	return nil
}

// TestPrinter opens a connection to the printer and pings it
func (s *PrinterService) TestPrinter(ctx context.Context, printerID string) (*TestResult, error) {
	printer, err := s.printerRepo.GetByPrinterID(ctx, printerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &TestResult{}

	drv, err := s.drivers.CreateDriver(printer)
	if err != nil {
		result.ErrorMessage = err.Error()
		result.Duration = time.Since(start).String()
		return result, nil
	}
	result.PrinterInfo = drv.GetPrinterInfo()

	testCtx, cancel := context.WithTimeout(ctx, s.config.Printer.OperationTimeout)
	defer cancel()

	if err := drv.Connect(testCtx); err != nil {
		result.ErrorMessage = err.Error()
		result.Duration = time.Since(start).String()
		return result, nil
	}
	defer drv.Disconnect(context.Background())

	if err := drv.Ping(testCtx); err != nil {
		result.ErrorMessage = err.Error()
	} else {
		result.Success = true
	}
	result.Status = drv.GetStatus()
	result.Duration = time.Since(start).String()

	s.logger.Logger.Info("Printer tested",
		zap.String("printer_id", printerID),
		zap.Bool("success", result.Success),
		zap.String("duration", result.Duration),
	)
	return result, nil
}

func (s *PrinterService) validateRegisterRequest(req *RegisterPrinterRequest) error {
	if req.PrinterID == "" {
		return fmt.Errorf("printer_id is required")
	}
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	if req.Model == "" {
		return fmt.Errorf("model is required")
	}
	if req.PaperWidth < 0 {
		return fmt.Errorf("paper_width must not be negative")
	}

	return s.validatePrinter(&model.Printer{
		Brand:            req.Brand,
		Model:            req.Model,
		ConnectionType:   req.ConnectionType,
		ConnectionConfig: model.JSONObject(req.ConnectionConfig),
	})
}

func (s *PrinterService) validatePrinter(p *model.Printer) error {
	if !p.ConnectionType.Valid() {
		return fmt.Errorf("unsupported connection type: %q", p.ConnectionType)
	}
	if p.PaperWidth < 0 {
		return fmt.Errorf("paper_width must not be negative")
	}
	if !s.drivers.IsSupported(p.Brand, p.Model) {
		return fmt.Errorf("%w: %s %s", ErrUnsupportedModel, p.Brand, p.Model)
	}
	return protocol.ValidateConfig(p.ConnectionType, p.ConnectionConfig)
}
