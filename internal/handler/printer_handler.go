// internal/handler/printer_handler.go
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"epos-bridge/internal/model"
	"epos-bridge/internal/repository"
	"epos-bridge/internal/service"
	"epos-bridge/internal/utils"
)

// PrinterManager is the printer registry used by the HTTP API
type PrinterManager interface {
	RegisterPrinter(ctx context.Context, req *service.RegisterPrinterRequest) (*model.Printer, error)
	GetPrinter(ctx context.Context, printerID string) (*model.Printer, error)
	ListPrinters(ctx context.Context, filter *repository.PrinterFilter) ([]*model.Printer, error)
	UpdatePrinter(ctx context.Context, printerID string, req *service.UpdatePrinterRequest) (*model.Printer, error)
	DeletePrinter(ctx context.Context, printerID string) error
	TestPrinter(ctx context.Context, printerID string) (*service.TestResult, error)
}

// PrinterHandler handles printer-related HTTP requests
type PrinterHandler struct {
	printers PrinterManager
	logger   *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printers PrinterManager, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		printers: printers,
		logger:   utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterPrinter registers a new printer
// @Summary Register a printer
// @Description Register a receipt printer with its connection settings
// @Tags Printers
// @Accept json
// @Produce json
// @Param request body service.RegisterPrinterRequest true "Printer registration request"
// @Success 201 {object} utils.APIResponse{data=model.Printer} "Printer registered successfully"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 409 {object} utils.APIResponse "Printer already exists"
// @Failure 500 {object} utils.APIResponse "Internal server error"
// @Router /printers [post]
func (h *PrinterHandler) RegisterPrinter(c *gin.Context) {
	var req service.RegisterPrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	printer, err := h.printers.RegisterPrinter(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to register printer", zap.Error(err))
		utils.ErrorResponse(c, statusFor(err), "Failed to register printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Printer registered successfully", printer)
}

// ListPrinters lists registered printers
// @Summary List printers
// @Description Get registered printers, optionally filtered
// @Tags Printers
// @Produce json
// @Param brand query string false "Filter by brand" Enums(EPSON, GENERIC)
// @Param connection_type query string false "Filter by connection type" Enums(TCP, SERIAL, USB)
// @Param enabled query bool false "Filter by enabled flag"
// @Success 200 {object} utils.APIResponse{data=utils.ListData{items=[]model.Printer}} "Printers retrieved successfully"
// @Failure 500 {object} utils.APIResponse "Internal server error"
// @Router /printers [get]
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	filter := &repository.PrinterFilter{}

	if brand := c.Query("brand"); brand != "" {
		b := model.PrinterBrand(brand)
		filter.Brand = &b
	}
	if connectionType := c.Query("connection_type"); connectionType != "" {
		ct := model.ConnectionType(connectionType)
		filter.ConnectionType = &ct
	}
	if enabled := c.Query("enabled"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			filter.Enabled = &e
		}
	}

	printers, err := h.printers.ListPrinters(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list printers", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list printers", err)
		return
	}

	utils.ListResponse(c, "Printers retrieved successfully", printers, len(printers))
}

// GetPrinter gets a printer by ID
// @Summary Get printer
// @Tags Printers
// @Produce json
// @Param printer_id path string true "Printer ID"
// @Success 200 {object} utils.APIResponse{data=model.Printer} "Printer retrieved successfully"
// @Failure 404 {object} utils.APIResponse "Printer not found"
// @Router /printers/{printer_id} [get]
func (h *PrinterHandler) GetPrinter(c *gin.Context) {
	printer, err := h.printers.GetPrinter(c.Request.Context(), c.Param("printer_id"))
	if err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to get printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer retrieved successfully", printer)
}

// UpdatePrinter updates a printer
// @Summary Update printer
// @Description Update selected printer fields
// @Tags Printers
// @Accept json
// @Produce json
// @Param printer_id path string true "Printer ID"
// @Param request body service.UpdatePrinterRequest true "Fields to update"
// @Success 200 {object} utils.APIResponse{data=model.Printer} "Printer updated successfully"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 404 {object} utils.APIResponse "Printer not found"
// @Router /printers/{printer_id} [put]
func (h *PrinterHandler) UpdatePrinter(c *gin.Context) {
	var req service.UpdatePrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	printer, err := h.printers.UpdatePrinter(c.Request.Context(), c.Param("printer_id"), &req)
	if err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to update printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer updated successfully", printer)
}

// DeletePrinter deletes a printer
// @Summary Delete printer
// @Description Delete a printer together with its job history
// @Tags Printers
// @Produce json
// @Param printer_id path string true "Printer ID"
// @Success 200 {object} utils.APIResponse "Printer deleted successfully"
// @Failure 404 {object} utils.APIResponse "Printer not found"
// @Router /printers/{printer_id} [delete]
func (h *PrinterHandler) DeletePrinter(c *gin.Context) {
	printerID := c.Param("printer_id")
	if err := h.printers.DeletePrinter(c.Request.Context(), printerID); err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to delete printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer deleted successfully", gin.H{"printer_id": printerID})
}

// TestPrinter checks printer connectivity
// @Summary Test printer connection
// @Description Connect to the printer and send a status request
// @Tags Printers
// @Produce json
// @Param printer_id path string true "Printer ID"
// @Success 200 {object} utils.APIResponse{data=service.TestResult} "Printer test completed"
// @Failure 404 {object} utils.APIResponse "Printer not found"
// @Router /printers/{printer_id}/test [post]
func (h *PrinterHandler) TestPrinter(c *gin.Context) {
	result, err := h.printers.TestPrinter(c.Request.Context(), c.Param("printer_id"))
	if err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to test printer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer test completed", result)
}
