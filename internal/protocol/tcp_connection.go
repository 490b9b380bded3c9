// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"epos-bridge/internal/model"
)

// TCPConnection talks to a network printer, usually on the raw port 9100
type TCPConnection struct {
	config *TCPConfig
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.Mutex
	stats  ProtocolStats
}

// NewTCPConnection creates a new TCP connection
func NewTCPConnection(config *TCPConfig, logger *zap.Logger) *TCPConnection {
	return &TCPConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
	}
}

func (tc *TCPConnection) address() string {
	return net.JoinHostPort(tc.config.Host, strconv.Itoa(tc.config.Port))
}

// Open dials the printer
func (tc *TCPConnection) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.conn != nil {
		return nil
	}

	dialer := &net.Dialer{Timeout: tc.config.Timeout}
	if tc.config.KeepAlive {
		dialer.KeepAlive = 30 * time.Second
	}

	conn, err := dialer.DialContext(ctx, "tcp", tc.address())
	if err != nil {
		tc.stats.ErrorCount++
		tc.logger.Error("Failed to open TCP connection", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", tc.address(), err)
	}

	tc.conn = conn
	tc.stats.IsConnected = true
	tc.stats.LastActivity = time.Now()

	tc.logger.Debug("TCP connection opened")
	return nil
}

// Close closes the TCP connection
func (tc *TCPConnection) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.conn == nil {
		return nil
	}

	err := tc.conn.Close()
	tc.conn = nil
	tc.stats.IsConnected = false
	if err != nil {
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}

	tc.logger.Debug("TCP connection closed")
	return nil
}

// IsOpen returns whether the connection is open
func (tc *TCPConnection) IsOpen() bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.conn != nil
}

// Write sends data, honouring the context deadline when it is sooner than
// the configured write timeout
func (tc *TCPConnection) Write(ctx context.Context, data []byte) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.conn == nil {
		return fmt.Errorf("tcp: %w", ErrNotOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tc.conn.SetWriteDeadline(deadline(ctx, tc.config.WriteTimeout))

	startTime := time.Now()
	n, err := tc.conn.Write(data)
	if err != nil {
		tc.stats.ErrorCount++
		tc.logger.Error("TCP write failed", zap.Error(err))
		return fmt.Errorf("failed to write to TCP connection: %w", err)
	}
	if n != len(data) {
		tc.stats.ErrorCount++
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	tc.stats.recordWrite(n, time.Since(startTime))
	tc.logger.Debug("TCP write completed", zap.Int("bytes", n))
	return nil
}

// Read reads up to maxBytes
func (tc *TCPConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	tc.mutex.Lock()
	conn := tc.conn
	tc.mutex.Unlock()

	if conn == nil {
		return nil, fmt.Errorf("tcp: %w", ErrNotOpen)
	}

	conn.SetReadDeadline(deadline(ctx, tc.config.ReadTimeout))

	buffer := make([]byte, maxBytes)
	done := make(chan readResult, 1)
	go func() {
		n, err := conn.Read(buffer)
		if err != nil {
			done <- readResult{err: fmt.Errorf("failed to read from TCP connection: %w", err)}
			return
		}
		done <- readResult{data: buffer[:n]}
	}()

	select {
	case result := <-done:
		tc.mutex.Lock()
		defer tc.mutex.Unlock()
		if result.err != nil {
			tc.stats.ErrorCount++
			return nil, result.err
		}
		tc.stats.recordRead(len(result.data))
		return result.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetProtocolType returns the protocol type
func (tc *TCPConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeTCP
}

// GetStats returns a snapshot of the transport statistics
func (tc *TCPConnection) GetStats() ProtocolStats {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.stats
}

// Ping sends a real-time status request
func (tc *TCPConnection) Ping(ctx context.Context) error {
	return tc.Write(ctx, statusRequest)
}

// deadline picks the earlier of the context deadline and now+timeout.
// A zero result clears the deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}
