// internal/service/print_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/command"
	"epos-bridge/internal/config"
	"epos-bridge/internal/metrics"
	"epos-bridge/internal/model"
	"epos-bridge/internal/repository"
	"epos-bridge/internal/utils"
	"epos-bridge/pkg/driver"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 500
)

// PrintService runs command batches against printers. Jobs for the same
// printer are serialized; different printers print concurrently.
type PrintService struct {
	printerRepo repository.PrinterRepository
	jobRepo     repository.JobRepository
	drivers     DriverProvider
	translator  *command.Translator
	events      EventPublisher
	metrics     *metrics.Metrics
	config      *config.Config
	logger      *utils.ServiceLogger

	locks map[string]*sync.Mutex
	mutex sync.Mutex
}

// NewPrintService creates a new print service
func NewPrintService(
	printerRepo repository.PrinterRepository,
	jobRepo repository.JobRepository,
	drivers DriverProvider,
	translator *command.Translator,
	events EventPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		printerRepo: printerRepo,
		jobRepo:     jobRepo,
		drivers:     drivers,
		translator:  translator,
		events:      events,
		metrics:     m,
		config:      cfg,
		logger:      utils.NewServiceLogger(logger, "print-service"),
		locks:       make(map[string]*sync.Mutex),
	}
}

// Submit translates batch onto the printer's driver and sends the result.
// Records the driver cannot use are dropped and reported per index; the
// job only fails when the printer cannot be reached. The returned job is
// non-nil whenever it was recorded, including on failure.
func (s *PrintService) Submit(ctx context.Context, printerID string, batch *bridge.Batch, source model.JobSource) (*model.PrintJob, error) {
	if batch == nil || len(batch.Commands) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, bridge.ErrEmptyBatch)
	}
	if n := len(batch.Commands); n > s.config.Printer.MaxJobCommands {
		return nil, fmt.Errorf("%w: %d commands, limit is %d", ErrTooManyCommands, n, s.config.Printer.MaxJobCommands)
	}

	printer, err := s.printerRepo.GetByPrinterID(ctx, printerID)
	if err != nil {
		return nil, err
	}
	if !printer.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrPrinterDisabled, printerID)
	}

	lock := s.printerLock(printerID)
	lock.Lock()
	defer lock.Unlock()

	job := &model.PrintJob{
		ID:            uuid.New(),
		PrinterID:     printerID,
		Source:        source,
		Status:        model.JobStatusProcessing,
		TotalCommands: len(batch.Commands),
		StartedAt:     time.Now(),
	}
	if batch.RequestID != "" {
		requestID := batch.RequestID
		job.RequestID = &requestID
	}

	jobLogger := utils.NewJobLogger(s.logger.Logger, job.ID.String(), printerID, string(source))
	if err := s.jobRepo.Create(ctx, job); err != nil {
		jobLogger.Error(err)
		return nil, err
	}
	jobLogger.Start(zap.Int("commands", job.TotalCommands))
	s.events.Publish(model.NewPrinterEvent(model.EventJobStarted, job))

	outcomes, printErr := s.print(ctx, printer, batch.Commands, job)
	s.summarize(job, outcomes)

	completedAt := time.Now()
	durationMs := int(completedAt.Sub(job.StartedAt).Milliseconds())
	job.CompletedAt = &completedAt
	job.DurationMs = &durationMs

	eventType := model.EventJobCompleted
	if printErr != nil {
		eventType = model.EventJobFailed
		job.Status = model.JobStatusFailed
		msg := printErr.Error()
		job.ErrorMessage = &msg
		jobLogger.Error(printErr, zap.Int("forwarded", job.Forwarded))
	} else {
		job.Status = model.JobStatusCompleted
		jobLogger.Success(
			zap.Int("forwarded", job.Forwarded),
			zap.Int("dropped", job.Dropped),
			zap.Int("bytes", job.BytesSent),
		)
		if err := s.printerRepo.TouchLastPrint(ctx, printerID); err != nil {
			jobLogger.Logger().Warn("Failed to update last print time", zap.Error(err))
		}
	}

	// The job row must be closed even if the caller went away.
	if err := s.jobRepo.Complete(context.WithoutCancel(ctx), job); err != nil {
		jobLogger.Logger().Error("Failed to store job result", zap.Error(err))
	}
	s.metrics.ObserveJob(string(job.Status), string(source), completedAt.Sub(job.StartedAt).Seconds())
	s.events.Publish(model.NewPrinterEvent(eventType, job))

	if printErr != nil {
		return job, fmt.Errorf("%w: %v", ErrPrinterUnavailable, printErr)
	}
	return job, nil
}

// print runs one driver transaction. Outcomes are returned even when the
// data could not be sent.
func (s *PrintService) print(ctx context.Context, printer *model.Printer, records []command.Record, job *model.PrintJob) ([]command.Outcome, error) {
	drv, err := s.drivers.CreateDriver(printer)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.Printer.OperationTimeout)
	defer cancel()

	if err := drv.Connect(opCtx); err != nil {
		return nil, err
	}
	defer func() {
		if err := drv.Disconnect(context.Background()); err != nil {
			s.logger.Warn("Failed to disconnect printer",
				zap.String("printer_id", printer.PrinterID),
				zap.Error(err),
			)
		}
	}()

	if err := drv.BeginTransaction(); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	outcomes := s.translator.TranslateAll(drv, records)
	if err := drv.EndTransaction(); err != nil {
		drv.ClearCommandBuffer()
		return outcomes, fmt.Errorf("failed to end transaction: %w", err)
	}

	size := bufferedSize(drv)
	if err := drv.SendData(opCtx); err != nil {
		drv.ClearCommandBuffer()
		return outcomes, err
	}
	job.BytesSent = size
	return outcomes, nil
}

func bufferedSize(drv driver.PrinterDriver) int {
	if status := drv.GetStatus(); status != nil {
		return status.BufferedSize
	}
	return 0
}

// summarize fills the per-record results and outcome counters of job.
// Records that were never translated are reported as no_printer.
func (s *PrintService) summarize(job *model.PrintJob, outcomes []command.Outcome) {
	counts := make(map[command.Status]int, len(command.AllStatuses))
	job.Results = make([]model.CommandResult, 0, job.TotalCommands)
	job.Forwarded, job.Dropped = 0, 0

	for i := 0; i < job.TotalCommands; i++ {
		outcome := command.Outcome{Status: command.StatusNoPrinter}
		if i < len(outcomes) {
			outcome = outcomes[i]
		}

		result := model.CommandResult{
			Index:   i,
			Command: outcome.Command,
			Status:  string(outcome.Status),
		}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
		}
		job.Results = append(job.Results, result)

		counts[outcome.Status]++
		if outcome.Forwarded() {
			job.Forwarded++
		} else {
			job.Dropped++
		}
		s.metrics.ObserveCommand(outcome.Command, command.Supported(outcome.Command), string(outcome.Status))
	}

	job.OutcomeCounts = model.JSONObject{}
	for _, status := range command.AllStatuses {
		if n := counts[status]; n > 0 {
			job.OutcomeCounts[string(status)] = n
		}
	}
}

// GetJob returns a stored job
func (s *PrintService) GetJob(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ListJobs returns the most recent jobs of a printer
func (s *PrintService) ListJobs(ctx context.Context, printerID string, limit int) ([]*model.PrintJob, error) {
	if _, err := s.printerRepo.GetByPrinterID(ctx, printerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultJobListLimit
	}
	if limit > maxJobListLimit {
		limit = maxJobListLimit
	}
	return s.jobRepo.ListByPrinter(ctx, printerID, limit)
}

func (s *PrintService) printerLock(printerID string) *sync.Mutex {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	lock, ok := s.locks[printerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[printerID] = lock
	}
	return lock
}
