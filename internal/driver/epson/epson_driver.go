// internal/driver/epson/epson_driver.go
package epson

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"epos-bridge/internal/model"
	"epos-bridge/internal/protocol"
	"epos-bridge/internal/utils"
	"epos-bridge/pkg/driver"
)

// MaxBufferSize caps the bytes a single transaction may accumulate
const MaxBufferSize = 4 << 20

var (
	ErrNotConnected   = errors.New("printer not connected")
	ErrBufferOverflow = errors.New("command buffer full")
)

// modelPaperWidths holds the printable width in dots for known models
var modelPaperWidths = map[string]int{
	"TM-T88VI":  model.PaperWidth80mm,
	"TM-T88V":   model.PaperWidth80mm,
	"TM-T20III": model.PaperWidth80mm,
	"TM-T82III": model.PaperWidth80mm,
	"TM-M30":    model.PaperWidth80mm,
	"TM-M10":    model.PaperWidth58mm,
	"TM-P20":    model.PaperWidth58mm,
}

// EPSONDriver implements driver.PrinterDriver by buffering ESC/POS
// sequences and flushing them over a protocol on SendData
type EPSONDriver struct {
	printer    *model.Printer
	protocols  protocol.Creator
	protocol   protocol.PrinterProtocol
	logger     *utils.PrinterLogger
	buffer     bytes.Buffer
	paperWidth int
	lastSent   time.Time
	lastError  string
	mutex      sync.Mutex
}

// NewEPSONDriver creates a driver for an EPSON TM printer. No connection is
// opened until Connect.
func NewEPSONDriver(printer *model.Printer, protocols protocol.Creator, logger *zap.Logger) (driver.PrinterDriver, error) {
	if printer == nil {
		return nil, fmt.Errorf("printer is required")
	}
	if protocols == nil {
		return nil, fmt.Errorf("protocol creator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EPSONDriver{
		printer:    printer,
		protocols:  protocols,
		logger:     utils.NewPrinterLogger(logger, printer.PrinterID, string(printer.Brand), printer.Model),
		paperWidth: paperWidthFor(printer),
	}, nil
}

func paperWidthFor(printer *model.Printer) int {
	if printer.PaperWidth > 0 {
		return printer.PaperWidth
	}
	if w, ok := modelPaperWidths[strings.ToUpper(printer.Model)]; ok {
		return w
	}
	return model.PaperWidth80mm
}

// Connect opens the transport and resets the printer
func (d *EPSONDriver) Connect(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.protocol != nil && d.protocol.IsOpen() {
		return nil
	}

	p, err := d.protocols.CreateProtocol(d.printer.ConnectionType, d.printer.ConnectionConfig)
	if err != nil {
		d.logger.LogConnection("connect", err)
		return fmt.Errorf("failed to create %s protocol: %w", d.printer.ConnectionType, err)
	}

	if err := p.Open(ctx); err != nil {
		d.lastError = err.Error()
		d.logger.LogConnection("connect", err)
		return fmt.Errorf("failed to open %s connection: %w", d.printer.ConnectionType, err)
	}

	setup := withParam(ESC_POS_COMMANDS.INITIALIZE)
	setup = append(setup, withParam(ESC_POS_COMMANDS.SELECT_CHARSET, 0)...) // PC437
	if d.paperWidth <= model.PaperWidth58mm {
		setup = append(setup, ESC_POS_COMMANDS.SET_WIDTH_58MM...)
	} else {
		setup = append(setup, ESC_POS_COMMANDS.SET_WIDTH_80MM...)
	}
	if err := p.Write(ctx, setup); err != nil {
		p.Close()
		d.lastError = err.Error()
		d.logger.LogConnection("connect", err)
		return fmt.Errorf("failed to initialize printer: %w", err)
	}

	d.protocol = p
	d.lastError = ""
	d.logger.LogConnection("connect", nil)
	return nil
}

// Disconnect closes the transport. Buffered data is kept.
func (d *EPSONDriver) Disconnect(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.protocol == nil {
		return nil
	}

	err := d.protocol.Close()
	d.protocol = nil
	d.logger.LogConnection("disconnect", err)
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// IsConnected returns connection status
func (d *EPSONDriver) IsConnected() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.connected()
}

func (d *EPSONDriver) connected() bool {
	return d.protocol != nil && d.protocol.IsOpen()
}

// Ping sends a real-time status request
func (d *EPSONDriver) Ping(ctx context.Context) error {
	d.mutex.Lock()
	p := d.protocol
	d.mutex.Unlock()

	if p == nil || !p.IsOpen() {
		return ErrNotConnected
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// BeginTransaction discards anything buffered and starts a new job with
// a printer reset
func (d *EPSONDriver) BeginTransaction() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.buffer.Reset()
	d.buffer.Write(ESC_POS_COMMANDS.INITIALIZE)
	return nil
}

// EndTransaction closes the current job. Data stays buffered until SendData.
func (d *EPSONDriver) EndTransaction() error {
	return nil
}

// SendData writes the buffer to the printer and clears it
func (d *EPSONDriver) SendData(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.connected() {
		return ErrNotConnected
	}
	if d.buffer.Len() == 0 {
		return nil
	}

	start := time.Now()
	size := d.buffer.Len()
	err := d.protocol.Write(ctx, d.buffer.Bytes())
	d.logger.LogTransmission(size, time.Since(start), err)
	if err != nil {
		d.lastError = err.Error()
		return fmt.Errorf("failed to send print data: %w", err)
	}

	d.buffer.Reset()
	d.lastSent = time.Now()
	d.lastError = ""
	return nil
}

// ClearCommandBuffer drops buffered data without sending it
func (d *EPSONDriver) ClearCommandBuffer() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.buffer.Reset()
	return nil
}

// GetPrinterInfo returns static printer information
func (d *EPSONDriver) GetPrinterInfo() *driver.PrinterInfo {
	return &driver.PrinterInfo{
		PrinterID:      d.printer.PrinterID,
		Brand:          string(d.printer.Brand),
		Model:          d.printer.Model,
		ConnectionType: string(d.printer.ConnectionType),
		PaperWidth:     d.paperWidth,
	}
}

// GetStatus returns the last known transport state
func (d *EPSONDriver) GetStatus() *driver.PrinterStatus {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return &driver.PrinterStatus{
		Connected:    d.connected(),
		BufferedSize: d.buffer.Len(),
		LastSent:     d.lastSent,
		ErrorMessage: d.lastError,
	}
}

// write appends sequences to the buffer as one unit
func (d *EPSONDriver) write(cmds ...[]byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	n := 0
	for _, c := range cmds {
		n += len(c)
	}
	if d.buffer.Len()+n > MaxBufferSize {
		return fmt.Errorf("%w: %d bytes buffered, %d more requested", ErrBufferOverflow, d.buffer.Len(), n)
	}
	for _, c := range cmds {
		d.buffer.Write(c)
	}
	return nil
}
