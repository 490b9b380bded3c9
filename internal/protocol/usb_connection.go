// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"epos-bridge/internal/model"
)

// USBConnection talks to a USB printer through its bulk endpoints
type USBConnection struct {
	config    *USBConfig
	ctx       *gousb.Context
	device    *gousb.Device
	intf      *gousb.Interface
	closeIntf func()
	outEndpt  *gousb.OutEndpoint
	inEndpt   *gousb.InEndpoint
	logger    *zap.Logger
	mutex     sync.Mutex
	stats     ProtocolStats
}

// NewUSBConnection creates a new USB connection
func NewUSBConnection(config *USBConfig, logger *zap.Logger) *USBConnection {
	return &USBConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// Open claims the default interface of the matching device
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.outEndpt != nil {
		return nil
	}

	vendorID, err := parseHexID(uc.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := parseHexID(uc.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	usbCtx := gousb.NewContext()

	device, err := uc.findAndOpenDevice(usbCtx, vendorID, productID)
	if err != nil {
		usbCtx.Close()
		uc.stats.ErrorCount++
		return fmt.Errorf("failed to find USB device: %w", err)
	}

	if err := device.SetAutoDetach(true); err != nil {
		uc.logger.Warn("Kernel driver auto-detach unavailable", zap.Error(err))
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to claim interface: %w", err)
	}

	outEndpt, err := intf.OutEndpoint(uc.config.Endpoint)
	if err != nil {
		done()
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to get out endpoint: %w", err)
	}

	// Status reads are optional; many printers expose only the out endpoint
	inEndpt, err := intf.InEndpoint(uc.config.Endpoint)
	if err != nil {
		uc.logger.Debug("No in endpoint found", zap.Error(err))
	}

	uc.ctx = usbCtx
	uc.device = device
	uc.intf = intf
	uc.closeIntf = done
	uc.outEndpt = outEndpt
	uc.inEndpt = inEndpt
	uc.stats.IsConnected = true
	uc.stats.LastActivity = time.Now()

	uc.logger.Debug("USB connection opened")
	return nil
}

// Close releases the interface, device and context
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.outEndpt == nil {
		return nil
	}

	if uc.closeIntf != nil {
		uc.closeIntf()
		uc.closeIntf = nil
	}
	var err error
	if uc.device != nil {
		err = uc.device.Close()
		uc.device = nil
	}
	if uc.ctx != nil {
		uc.ctx.Close()
		uc.ctx = nil
	}

	uc.intf = nil
	uc.outEndpt = nil
	uc.inEndpt = nil
	uc.stats.IsConnected = false

	if err != nil {
		return fmt.Errorf("failed to close USB device: %w", err)
	}
	return nil
}

// IsOpen returns whether the connection is open
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.outEndpt != nil
}

// Write sends data on the bulk out endpoint
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.outEndpt == nil {
		return fmt.Errorf("usb: %w", ErrNotOpen)
	}

	writeCtx, cancel := context.WithTimeout(ctx, uc.config.Timeout)
	defer cancel()

	startTime := time.Now()
	n, err := uc.outEndpt.WriteContext(writeCtx, data)
	if err != nil {
		uc.stats.ErrorCount++
		uc.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("failed to write to USB device: %w", err)
	}
	if n != len(data) {
		uc.stats.ErrorCount++
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.stats.recordWrite(n, time.Since(startTime))
	return nil
}

// Read reads from the bulk in endpoint
func (uc *USBConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.inEndpt == nil {
		return nil, fmt.Errorf("usb: no in endpoint: %w", ErrNotOpen)
	}

	readCtx, cancel := context.WithTimeout(ctx, uc.config.Timeout)
	defer cancel()

	buffer := make([]byte, maxBytes)
	n, err := uc.inEndpt.ReadContext(readCtx, buffer)
	if err != nil {
		uc.stats.ErrorCount++
		return nil, fmt.Errorf("failed to read from USB device: %w", err)
	}

	uc.stats.recordRead(n)
	return buffer[:n], nil
}

// GetProtocolType returns the protocol type
func (uc *USBConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeUSB
}

// GetStats returns a snapshot of the transport statistics
func (uc *USBConnection) GetStats() ProtocolStats {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.stats
}

// Ping sends a real-time status request
func (uc *USBConnection) Ping(ctx context.Context) error {
	return uc.Write(ctx, statusRequest)
}

// parseHexID parses hex ID string (0x04b8 or 04b8)
func parseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(strings.ToLower(hexStr), "0x")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}

func (uc *USBConnection) findAndOpenDevice(usbCtx *gousb.Context, vendorID, productID gousb.ID) (*gousb.Device, error) {
	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var selected *gousb.Device
	for _, device := range devices {
		if selected == nil && uc.matchesSerial(device) {
			selected = device
			continue
		}
		device.Close()
	}

	if selected == nil {
		return nil, fmt.Errorf("USB device not found (VID: %s, PID: %s)", vendorID, productID)
	}
	return selected, nil
}

func (uc *USBConnection) matchesSerial(device *gousb.Device) bool {
	if uc.config.SerialNumber == "" {
		return true
	}
	serial, err := device.SerialNumber()
	if err != nil {
		return false
	}
	return serial == uc.config.SerialNumber
}
