// pkg/driver/interfaces.go
package driver

import (
	"context"
	"image"
)

// Printer is the command-building surface of a receipt printer driver.
// Every method appends one instruction to the driver's command buffer.
type Printer interface {
	AddText(text string) error
	AddCommand(data []byte) error
	AddImage(img image.Image, x, y, width, height int, color Color, mode ColorMode, halftone Halftone, brightness float64, compress Compress) error
	AddFeedLine(lines int) error
	AddCut(mode CutMode) error
	AddTextAlign(align Align) error
	AddTextFont(font Font) error
	AddTextSmooth(smooth Toggle) error
	AddTextSize(width, height int) error
	AddTextStyle(reverse, underline, emphasis Toggle, color Color) error
}

// PrinterDriver is a Printer bound to a physical device
type PrinterDriver interface {
	Printer

	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Ping(ctx context.Context) error

	// Buffer management
	BeginTransaction() error
	EndTransaction() error
	SendData(ctx context.Context) error
	ClearCommandBuffer() error

	// Device information
	GetPrinterInfo() *PrinterInfo
	GetStatus() *PrinterStatus
}
