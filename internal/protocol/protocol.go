// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"
	"time"

	"epos-bridge/internal/model"
)

// PrinterProtocol is a byte transport to a printer
type PrinterProtocol interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)

	// Protocol information
	GetProtocolType() model.ConnectionType
	GetStats() ProtocolStats

	// Health and diagnostics
	Ping(ctx context.Context) error
}

// Creator builds a transport for a printer's connection settings
type Creator interface {
	CreateProtocol(connectionType model.ConnectionType, config map[string]interface{}) (PrinterProtocol, error)
}

// ErrNotOpen is returned by I/O on a closed transport
var ErrNotOpen = errors.New("connection not open")

// statusRequest is DLE EOT 1, the real-time printer status query
var statusRequest = []byte{0x10, 0x04, 0x01}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

func (s *ProtocolStats) recordWrite(n int, latency time.Duration) {
	s.BytesWritten += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
	if s.AverageLatency == 0 {
		s.AverageLatency = latency
	} else {
		s.AverageLatency = (s.AverageLatency + latency) / 2
	}
}

func (s *ProtocolStats) recordRead(n int) {
	s.BytesRead += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
}

type readResult struct {
	data []byte
	err  error
}
