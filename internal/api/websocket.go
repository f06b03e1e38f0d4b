package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/pedigree/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one websocket connection issuing queries.
type Client struct {
	conn *websocket.Conn
	send chan QueryResponse
	done chan struct{} // closed when writePump exits
}

// Hub tracks connected query clients and closes them on shutdown.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
	closed  bool
}

// NewHub creates a new websocket hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Run blocks until ctx is done and then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.Close()
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		client.conn.Close()
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_connected", n)
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_disconnected", n)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleWebSocket upgrades the connection and answers one QueryResponse per
// QueryRequest, in request order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan QueryResponse, 16),
		done: make(chan struct{}),
	}
	if !s.hub.register(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	defer s.hub.unregister(client)

	go client.writePump()
	client.readPump(r.Context(), s)
}

// readPump decodes requests and queues their answers. It is the only sender
// on c.send and closes it on return.
func (c *Client) readPump(ctx context.Context, s *Server) {
	defer close(c.send)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			return
		}
		select {
		case c.send <- s.answer(ctx, data):
		case <-c.done:
			return
		}
	}
}

// answer turns one raw message into its response. Undecodable messages get
// an error response under a fresh id.
func (s *Server) answer(ctx context.Context, data []byte) QueryResponse {
	var req QueryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return QueryResponse{ID: uuid.NewString(), Error: &APIError{Code: "INVALID_INPUT", Message: "malformed query: " + err.Error()}}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	resp := QueryResponse{ID: req.ID, Op: req.Op}
	res, err := s.Query(logging.WithRequestID(ctx, req.ID), req)
	if err != nil {
		_, code := errorStatus(err)
		resp.Error = &APIError{Code: code, Message: err.Error()}
		return resp
	}
	resp.Result = res
	return resp
}

// writePump serializes responses and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case resp, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(resp); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
