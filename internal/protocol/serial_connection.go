// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"epos-bridge/internal/model"
)

// SerialConnection talks to an RS-232 printer
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	stats  ProtocolStats
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// serialMode translates the stored settings into a go.bug.st/serial mode
func serialMode(config *SerialConfig) *serial.Mode {
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
	}

	switch config.StopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}

	switch config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	case "mark":
		mode.Parity = serial.MarkParity
	case "space":
		mode.Parity = serial.SpaceParity
	default:
		mode.Parity = serial.NoParity
	}

	return mode
}

// Open opens the serial port
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.port != nil {
		return nil
	}

	port, err := serial.Open(sc.config.Port, serialMode(sc.config))
	if err != nil {
		sc.stats.ErrorCount++
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(sc.config.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	sc.port = port
	sc.stats.IsConnected = true
	sc.stats.LastActivity = time.Now()

	sc.logger.Debug("Serial port opened", zap.Int("baud_rate", sc.config.BaudRate))
	return nil
}

// Close closes the serial port
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.port == nil {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.stats.IsConnected = false
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsOpen returns whether the port is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.port != nil
}

// Write writes data and waits for the UART to drain
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.port == nil {
		return fmt.Errorf("serial: %w", ErrNotOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	startTime := time.Now()
	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.ErrorCount++
		sc.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		sc.stats.ErrorCount++
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}
	if err := sc.port.Drain(); err != nil {
		sc.logger.Warn("Serial drain failed", zap.Error(err))
	}

	sc.stats.recordWrite(n, time.Since(startTime))
	return nil
}

// Read reads up to maxBytes within the port read timeout
func (sc *SerialConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	sc.mutex.Lock()
	port := sc.port
	sc.mutex.Unlock()

	if port == nil {
		return nil, fmt.Errorf("serial: %w", ErrNotOpen)
	}

	buffer := make([]byte, maxBytes)
	done := make(chan readResult, 1)
	go func() {
		n, err := port.Read(buffer)
		if err != nil {
			done <- readResult{err: fmt.Errorf("failed to read from serial port: %w", err)}
			return
		}
		done <- readResult{data: buffer[:n]}
	}()

	select {
	case result := <-done:
		sc.mutex.Lock()
		defer sc.mutex.Unlock()
		if result.err != nil {
			sc.stats.ErrorCount++
			return nil, result.err
		}
		sc.stats.recordRead(len(result.data))
		return result.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetProtocolType returns the protocol type
func (sc *SerialConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeSerial
}

// GetStats returns a snapshot of the transport statistics
func (sc *SerialConnection) GetStats() ProtocolStats {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.stats
}

// Ping sends a real-time status request
func (sc *SerialConnection) Ping(ctx context.Context) error {
	return sc.Write(ctx, statusRequest)
}
