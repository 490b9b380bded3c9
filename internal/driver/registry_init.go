// internal/driver/registry_init.go
package driver

import (
	"go.uber.org/zap"

	"epos-bridge/internal/driver/epson"
	"epos-bridge/internal/model"
)

var epsonModels = []string{
	"TM-T88VI",
	"TM-T88V",
	"TM-T20III",
	"TM-T82III",
	"TM-M30",
	AnyModel,
}

// RegisterDefaultDrivers registers all built-in printer drivers
func RegisterDefaultDrivers(registry *Registry, logger *zap.Logger) {
	for _, m := range epsonModels {
		registry.Register(model.BrandEpson, m, epson.NewEPSONDriver)
	}

	// ESC/POS is the lingua franca of receipt printers
	registry.Register(model.BrandGeneric, AnyModel, epson.NewEPSONDriver)

	logger.Info("Printer drivers registered",
		zap.Int("epson_models", len(epsonModels)),
	)
}
