package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/model"
)

// ItemFeedPath is the WebSocket endpoint streaming item events.
const ItemFeedPath = "/ws/items"

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendQueueSize  = 16
	closeWait      = time.Second
)

// wsClient is a connected feed subscriber.
type wsClient struct {
	conn   *websocket.Conn
	send   chan model.ItemEvent
	cancel context.CancelFunc
}

// WebSocketHandler fans item events out to connected WebSocket clients.
// It implements EventPublisher.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	closed   bool
	pumps    sync.WaitGroup
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser upgrades are
// accepted only from allowedOrigins; requests without an Origin header are
// always accepted.
func NewWebSocketHandler(logger *zap.Logger, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// RegisterRoutes registers the WebSocket route with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(ItemFeedPath, h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket handles WebSocket connection requests.
//
//nolint:contextcheck // WebSocket connections outlive the HTTP request context
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	// The request context ends when this handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	client := &wsClient{
		conn:   conn,
		send:   make(chan model.ItemEvent, sendQueueSize),
		cancel: cancel,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		h.sendCloseMessage(conn)
		_ = conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	h.pumps.Add(1)
	h.mu.Unlock()

	websocketClients.Inc()
	h.logger.Info("websocket client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, client)
	go h.readPump(ctx, client)
}

// Publish queues event for every connected client. Clients whose queue is
// full are disconnected instead of blocking the caller.
func (h *WebSocketHandler) Publish(event model.ItemEvent) {
	var slow []*wsClient

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("dropping slow websocket client",
			zap.String("remote_addr", client.conn.RemoteAddr().String()),
			zap.String("event", event.Type),
		)
		h.removeClient(client)
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains incoming frames so control messages are processed.
func (h *WebSocketHandler) readPump(ctx context.Context, client *wsClient) {
	defer h.removeClient(client)

	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
			h.logger.Debug("ignoring client message", zap.ByteString("message", message))
		}
	}
}

// writePump delivers queued events and keepalive pings until the client is
// removed, then sends a close frame and closes the connection.
func (h *WebSocketHandler) writePump(ctx context.Context, client *wsClient) {
	pingTicker := time.NewTicker(pingPeriod)

	defer func() {
		pingTicker.Stop()
		if err := client.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		h.pumps.Done()
	}()

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(client.conn)
			return
		case event := <-client.send:
			if err := h.sendEvent(client.conn, event); err != nil {
				h.logger.Debug("failed to send item event", zap.Error(err))
				h.removeClient(client)
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(client.conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				h.removeClient(client)
				return
			}
		}
	}
}

// sendEvent writes a single event as JSON.
func (h *WebSocketHandler) sendEvent(conn *websocket.Conn, event model.ItemEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}

// sendPing sends a ping message to the connection.
func (h *WebSocketHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *WebSocketHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient unregisters a client and stops its pumps.
func (h *WebSocketHandler) removeClient(client *wsClient) {
	h.mu.Lock()
	_, exists := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	client.cancel()

	if exists {
		websocketClients.Dec()
		h.logger.Info("websocket client disconnected", zap.String("remote_addr", client.conn.RemoteAddr().String()))
	}
}

// CloseAllConnections sends close frames to every client, closes their
// connections and rejects further upgrades.
func (h *WebSocketHandler) CloseAllConnections() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.removeClient(client)
	}

	done := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(closeWait):
		h.logger.Warn("timed out waiting for websocket writers to stop")
	}

	h.logger.Info("all websocket connections closed")
}
