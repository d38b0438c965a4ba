package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/ngvet/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peers with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from a peer. Dashboard pages only
	// listen, so inbound frames stay tiny.
	maxMessageSize = 512

	// Per-client send buffer. A client that falls this far behind is
	// dropped rather than allowed to stall broadcasts.
	sendBuffer = 16
)

// client is one connected dashboard page.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub tracks connected clients and fans report updates out to them.
type hub struct {
	logger     logging.Logger
	mutex      sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	closed     bool
}

func newHub(logger logging.Logger) *hub {
	return &hub{
		logger:     logger,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client, 8),
		unregister: make(chan *client, 8),
		broadcast:  make(chan []byte, 8),
	}
}

// publish queues a message for broadcast without blocking the caller.
func (h *hub) publish(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		// Broadcast backlog full; the next run will supersede this one
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// run owns the client set until ctx is cancelled.
func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			if c == nil {
				continue
			}
			h.mutex.Lock()
			if h.closed {
				h.mutex.Unlock()
				c.conn.Close(websocket.StatusGoingAway, "server shutting down")
				continue
			}
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Dashboard client connected", "total", total)

		case c := <-h.unregister:
			h.drop(ctx, c, websocket.StatusNormalClosure, "")

		case message := <-h.broadcast:
			h.mutex.RLock()
			var slow []*client
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					slow = append(slow, c)
				}
			}
			h.mutex.RUnlock()

			for _, c := range slow {
				h.drop(ctx, c, websocket.StatusPolicyViolation, "slow consumer")
			}
		}
	}
}

// drop removes a client and closes its connection.
func (h *hub) drop(ctx context.Context, c *client, status websocket.StatusCode, reason string) {
	if c == nil {
		return
	}

	h.mutex.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mutex.Unlock()

	if ok {
		c.conn.Close(status, reason)
		h.logger.Debug(ctx, "Dashboard client disconnected", "total", total)
	}
}

// closeAll disconnects every client during shutdown.
func (h *hub) closeAll() {
	h.mutex.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.closed = true
	h.mutex.Unlock()

	for _, c := range clients {
		close(c.send)
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (s *DashboardServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		logging.LogSecurityEvent(s.logger, r.Context(), "websocket_origin_rejected", map[string]interface{}{
			"origin": r.Header.Get("Origin"),
			"remote": r.RemoteAddr,
		})
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedHosts(),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	go c.writePump(s.logger)
	go c.readPump(s.hub)

	s.hub.register <- c
}

// readPump drains inbound frames so pongs and close frames are
// processed; the dashboard never sends meaningful data.
func (c *client) readPump(h *hub) {
	defer func() {
		select {
		case h.unregister <- c:
		default:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	ctx := context.Background()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump delivers queued messages and keeps the connection alive
// with pings.
func (c *client) writePump(logger logging.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
