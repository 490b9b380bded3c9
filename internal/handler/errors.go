// internal/handler/errors.go
package handler

import (
	"errors"
	"net/http"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/repository"
	"epos-bridge/internal/service"
)

// statusFor maps service and repository errors to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, repository.ErrPrinterNotFound), errors.Is(err, repository.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrPrinterExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, bridge.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTooManyCommands), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrPrinterDisabled):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPrinterUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
