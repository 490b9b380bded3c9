// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket message types sent to clients
const (
	MessageJobResult    = "job_result"
	MessageError        = "error"
	MessagePrinterEvent = "printer_event"
)

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Type        string          `json:"type"` // printer, events
	PrinterID   string          `json:"printer_id,omitempty"`
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`

	send   chan []byte
	closed bool
	mutex  sync.Mutex
}

func newClient(id string, conn *websocket.Conn, clientType, printerID string) *Client {
	return &Client{
		ID:          id,
		Connection:  conn,
		Type:        clientType,
		PrinterID:   printerID,
		ConnectedAt: time.Now(),
		send:        make(chan []byte, 256),
	}
}

// enqueue queues a frame for the write pump. It reports false when the
// client is gone or too slow.
func (c *Client) enqueue(message []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConnectionManager tracks live WebSocket clients
type ConnectionManager struct {
	clients map[string]*Client
	mutex   sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*Client),
	}
}

// Register registers a new client
func (cm *ConnectionManager) Register(client *Client) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[client.ID] = client
}

// Unregister removes a client and closes its send queue
func (cm *ConnectionManager) Unregister(client *Client) {
	cm.mutex.Lock()
	delete(cm.clients, client.ID)
	cm.mutex.Unlock()
	client.close()
}

// CloseAll closes every client connection
func (cm *ConnectionManager) CloseAll() {
	cm.mutex.RLock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	cm.mutex.RUnlock()

	for _, client := range clients {
		client.Connection.Close()
	}
}

// GetStats returns connection statistics
func (cm *ConnectionManager) GetStats() *ConnectionStats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := &ConnectionStats{
		TotalConnections: len(cm.clients),
		ByType:           make(map[string]int),
		ByPrinter:        make(map[string]int),
	}

	for _, client := range cm.clients {
		stats.ByType[client.Type]++
		if client.PrinterID != "" {
			stats.ByPrinter[client.PrinterID]++
		}
	}

	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ByType           map[string]int `json:"by_type"`
	ByPrinter        map[string]int `json:"by_printer"`
}
