// internal/handler/job_handler.go
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/model"
	"epos-bridge/internal/service"
	"epos-bridge/internal/utils"
)

// MaxBatchBytes caps the size of a submitted job body
const MaxBatchBytes = 16 << 20

// JobRunner runs and reads print jobs
type JobRunner interface {
	service.PrintSubmitter
	GetJob(ctx context.Context, id uuid.UUID) (*model.PrintJob, error)
	ListJobs(ctx context.Context, printerID string, limit int) ([]*model.PrintJob, error)
}

// JobHandler handles print job HTTP requests
type JobHandler struct {
	jobs   JobRunner
	logger *utils.ServiceLogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobRunner, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: utils.NewServiceLogger(logger, "job-handler"),
	}
}

// SubmitJob prints a batch of ePOS command records
// @Summary Submit print job
// @Description Translate a batch of ePOS command records and send it to the printer. Records that cannot be used are dropped and reported per index.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param printer_id path string true "Printer ID"
// @Param request body bridge.Batch true "Command batch"
// @Success 201 {object} utils.APIResponse{data=model.PrintJob} "Job completed"
// @Failure 400 {object} utils.APIResponse "Invalid batch"
// @Failure 404 {object} utils.APIResponse "Printer not found"
// @Failure 413 {object} utils.APIResponse "Batch too large"
// @Failure 502 {object} utils.APIResponse{data=model.PrintJob} "Printer unreachable"
// @Router /printers/{printer_id}/jobs [post]
func (h *JobHandler) SubmitJob(c *gin.Context) {
	printerID := c.Param("printer_id")

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBatchBytes))
	if err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to read request body", err)
		return
	}

	batch, err := bridge.DecodeBatch(body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid command batch", err)
		return
	}

	job, err := h.jobs.Submit(c.Request.Context(), printerID, batch, model.JobSourceHTTP)
	if err != nil {
		status := statusFor(err)
		if job != nil {
			utils.FailureResponse(c, status, "Print job failed", err, job)
			return
		}
		if status >= http.StatusInternalServerError {
			h.logger.Error("Failed to submit print job", zap.String("printer_id", printerID), zap.Error(err))
		}
		utils.ErrorResponse(c, status, "Failed to submit print job", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Print job completed", job)
}

// ListPrinterJobs lists recent jobs of a printer
// @Summary List printer jobs
// @Tags Jobs
// @Produce json
// @Param printer_id path string true "Printer ID"
// @Param limit query int false "Maximum number of jobs" default(50)
// @Success 200 {object} utils.APIResponse{data=utils.ListData{items=[]model.PrintJob}} "Jobs retrieved successfully"
// @Failure 404 {object} utils.APIResponse "Printer not found"
// @Router /printers/{printer_id}/jobs [get]
func (h *JobHandler) ListPrinterJobs(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	jobs, err := h.jobs.ListJobs(c.Request.Context(), c.Param("printer_id"), limit)
	if err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to list jobs", err)
		return
	}

	utils.ListResponse(c, "Jobs retrieved successfully", jobs, len(jobs))
}

// GetJob gets a print job by ID
// @Summary Get print job
// @Tags Jobs
// @Produce json
// @Param job_id path string true "Job ID" format(uuid)
// @Success 200 {object} utils.APIResponse{data=model.PrintJob} "Job retrieved successfully"
// @Failure 400 {object} utils.APIResponse "Invalid job ID"
// @Failure 404 {object} utils.APIResponse "Job not found"
// @Router /jobs/{job_id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid job ID", err)
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to get job", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Job retrieved successfully", job)
}
