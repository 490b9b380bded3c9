// internal/driver/registry.go
package driver

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"epos-bridge/internal/model"
	"epos-bridge/internal/protocol"
	"epos-bridge/pkg/driver"
)

// DriverFactory creates a printer driver bound to a transport factory
type DriverFactory func(printer *model.Printer, protocols protocol.Creator, logger *zap.Logger) (driver.PrinterDriver, error)

// AnyModel registers a factory for every model of a brand
const AnyModel = "*"

// Registry manages printer driver registration and creation
type Registry struct {
	drivers   map[DriverKey]DriverFactory
	protocols protocol.Creator
	mu        sync.RWMutex
	logger    *zap.Logger
}

// DriverKey uniquely identifies a driver
type DriverKey struct {
	Brand model.PrinterBrand
	Model string
}

// NewRegistry creates a new driver registry
func NewRegistry(protocols protocol.Creator, logger *zap.Logger) *Registry {
	return &Registry{
		drivers:   make(map[DriverKey]DriverFactory),
		protocols: protocols,
		logger:    logger,
	}
}

// Register registers a driver factory
func (r *Registry) Register(brand model.PrinterBrand, printerModel string, factory DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := DriverKey{Brand: brand, Model: strings.ToUpper(printerModel)}
	r.drivers[key] = factory
	r.logger.Debug("Driver registered",
		zap.String("brand", string(brand)),
		zap.String("model", key.Model),
	)
}

// CreateDriver creates a driver for printer, trying the exact model, then
// the brand wildcard, then the generic driver
func (r *Registry) CreateDriver(printer *model.Printer) (driver.PrinterDriver, error) {
	factory, ok := r.lookup(printer.Brand, printer.Model)
	if !ok {
		return nil, fmt.Errorf("no driver found for brand=%s, model=%s", printer.Brand, printer.Model)
	}
	return factory(printer, r.protocols, r.logger)
}

// IsSupported checks if a printer model has a driver
func (r *Registry) IsSupported(brand model.PrinterBrand, printerModel string) bool {
	_, ok := r.lookup(brand, printerModel)
	return ok
}

func (r *Registry) lookup(brand model.PrinterBrand, printerModel string) (DriverFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := DriverKey{Brand: brand, Model: strings.ToUpper(printerModel)}
	if factory, exists := r.drivers[key]; exists {
		return factory, true
	}

	key.Model = AnyModel
	if factory, exists := r.drivers[key]; exists {
		return factory, true
	}

	key.Brand = model.BrandGeneric
	factory, exists := r.drivers[key]
	return factory, exists
}

// ListDrivers returns all registered drivers
func (r *Registry) ListDrivers() []DriverKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]DriverKey, 0, len(r.drivers))
	for key := range r.drivers {
		keys = append(keys, key)
	}
	return keys
}
