// internal/handler/websocket_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/config"
	"epos-bridge/internal/events"
	"epos-bridge/internal/model"
	"epos-bridge/internal/service"
	"epos-bridge/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// PrinterLookup resolves a printer before a socket is upgraded
type PrinterLookup interface {
	GetPrinter(ctx context.Context, printerID string) (*model.Printer, error)
}

// EventSource hands out printer event feeds
type EventSource interface {
	Subscribe(printerID string) *events.Subscription
	Unsubscribe(sub *events.Subscription)
}

// WebSocketHandler accepts command batches over WebSocket and streams
// printer events back
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	printers    PrinterLookup
	jobs        service.PrintSubmitter
	events      EventSource
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	printers PrinterLookup,
	jobs service.PrintSubmitter,
	eventSource EventSource,
	security *config.SecurityConfig,
	logger *zap.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(security.AllowedOrigins),
		},
		connections: NewConnectionManager(),
		printers:    printers,
		jobs:        jobs,
		events:      eventSource,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

// originChecker allows requests without an Origin header and those whose
// origin is listed. "*" allows everything.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// HandlePrinterConnection upgrades a connection bound to one printer.
// Every text frame is a command batch; each gets a job_result or error
// reply, and the printer's events are pushed as they happen.
func (h *WebSocketHandler) HandlePrinterConnection(c *gin.Context) {
	printerID := c.Param("printer_id")
	if _, err := h.printers.GetPrinter(c.Request.Context(), printerID); err != nil {
		utils.ErrorResponse(c, statusFor(err), "Failed to open printer stream", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := newClient(uuid.New().String(), conn, "printer", printerID)
	client.UserAgent = c.Request.UserAgent()
	client.RemoteAddr = c.Request.RemoteAddr
	h.serve(client, printerID, true)
}

// HandleEventConnection upgrades a read-only connection that receives the
// events of every printer
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := newClient(uuid.New().String(), conn, "events", "")
	client.UserAgent = c.Request.UserAgent()
	client.RemoteAddr = c.Request.RemoteAddr
	h.serve(client, events.AllPrinters, false)
}

func (h *WebSocketHandler) serve(client *Client, topic string, acceptJobs bool) {
	h.connections.Register(client)
	h.logger.Info("WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("type", client.Type),
		zap.String("printer_id", client.PrinterID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	sub := h.events.Subscribe(topic)
	go h.forwardEvents(client, sub)
	go h.handleClientWrite(client)
	go h.handleClientRead(client, sub, acceptJobs)
}

// handleClientRead reads batches until the peer goes away
func (h *WebSocketHandler) handleClientRead(client *Client, sub *events.Subscription, acceptJobs bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.events.Unsubscribe(sub)
		h.connections.Unregister(client)
		client.Connection.Close()
		h.logger.Info("WebSocket client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadLimit(MaxBatchBytes)
	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		return client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, payload, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			return
		}
		if messageType != websocket.TextMessage {
			h.sendError(client, "", "only text frames are accepted")
			continue
		}
		if !acceptJobs {
			h.sendError(client, "", "this stream does not accept jobs")
			continue
		}

		h.handleBatch(ctx, client, payload)
	}
}

// handleBatch runs one batch. Batches on a connection run in the order
// they arrive.
func (h *WebSocketHandler) handleBatch(ctx context.Context, client *Client, payload []byte) {
	batch, err := bridge.DecodeBatch(payload)
	if err != nil {
		h.sendError(client, "", err.Error())
		return
	}

	job, err := h.jobs.Submit(ctx, client.PrinterID, batch, model.JobSourceWebSocket)
	if err != nil && job == nil {
		h.sendError(client, batch.RequestID, err.Error())
		return
	}

	h.sendMessage(client, &WebSocketMessage{
		Type:      MessageJobResult,
		RequestID: batch.RequestID,
		Data:      job,
		Timestamp: time.Now(),
	})
}

// handleClientWrite drains the send queue and keeps the connection alive
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Warn("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) forwardEvents(client *Client, sub *events.Subscription) {
	for event := range sub.C {
		h.sendMessage(client, &WebSocketMessage{
			Type:      MessagePrinterEvent,
			Data:      event,
			Timestamp: event.Timestamp,
		})
	}
}

// sendMessage queues a message for a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	if !client.enqueue(messageBytes) {
		h.logger.Warn("Client send queue closed or full, dropping message",
			zap.String("client_id", client.ID),
			zap.String("type", message.Type),
		)
	}
}

// sendError sends an error message to a client
func (h *WebSocketHandler) sendError(client *Client, requestID, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type:      MessageError,
		RequestID: requestID,
		Data: map[string]interface{}{
			"error": errorMsg,
		},
		Timestamp: time.Now(),
	})
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}

// Shutdown closes every open socket
func (h *WebSocketHandler) Shutdown() {
	h.connections.CloseAll()
}
