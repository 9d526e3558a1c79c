package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type HubMessage struct {
	Type      string     `json:"type"`
	Message   string     `json:"message,omitempty"`
	Workspace string     `json:"workspace"`
	Event     *TaskEvent `json:"event,omitempty"`
}

type hubClient struct {
	conn     *websocket.Conn
	identity types.Identity
	mu       sync.Mutex
}

func (c *hubClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *hubClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Hub pushes task events to websocket subscribers of the same workspace.
// Admins receive every event in their workspace, Members only events for
// tasks assigned to them.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*hubClient]struct{}
}

func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger:  orNop(logger),
		clients: make(map[string]map[*hubClient]struct{}),
	}
}

func (h *Hub) Notify(_ context.Context, event TaskEvent) error {
	key := types.WorkspaceKey(event.Workspace)

	h.mu.RLock()
	targets := make([]*hubClient, 0, len(h.clients[key]))
	for client := range h.clients[key] {
		if client.identity.IsAdmin() || client.identity.ID == event.AssigneeID {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	message := HubMessage{Type: "task", Workspace: event.Workspace, Event: &event}
	for _, client := range targets {
		if err := client.writeJSON(message); err != nil {
			h.logger.Warn("failed to push task event", zap.String("user_id", client.identity.ID), zap.Error(err))
			h.unregister(key, client)
			client.conn.Close()
		}
	}
	return nil
}

// ClientCount reports the number of live subscribers for a workspace.
func (h *Hub) ClientCount(workspaceName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[types.WorkspaceKey(workspaceName)])
}

// ServeWS upgrades the request and blocks until the subscriber disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, identity types.Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("user_id", identity.ID), zap.Error(err))
		return
	}

	key := types.WorkspaceKey(identity.WorkspaceName)
	client := &hubClient{conn: conn, identity: identity}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.register(key, client)
	defer func() {
		h.unregister(key, client)
		conn.Close()
		h.logger.Debug("websocket closed", zap.String("user_id", identity.ID), zap.String("workspace", identity.WorkspaceName))
	}()

	err = client.writeJSON(HubMessage{
		Type:      "connected",
		Message:   "WebSocket connection established",
		Workspace: identity.WorkspaceName,
	})
	if err != nil {
		h.logger.Warn("failed to send welcome message", zap.Error(err))
		return
	}

	done := make(chan struct{})
	defer close(done)
	go h.ping(client, done)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", zap.String("user_id", identity.ID), zap.Error(err))
			}
			return
		}
	}
}

// Close disconnects every subscriber. Close frames go out after the registry
// is released so a slow peer cannot stall Notify or ClientCount.
func (h *Hub) Close() {
	h.mu.Lock()
	var clients []*hubClient
	for _, set := range h.clients {
		for client := range set {
			clients = append(clients, client)
		}
	}
	h.clients = make(map[string]map[*hubClient]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		_ = client.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		client.conn.Close()
	}
}

func (h *Hub) ping(client *hubClient, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(key string, client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[key] == nil {
		h.clients[key] = make(map[*hubClient]struct{})
	}
	h.clients[key][client] = struct{}{}
}

func (h *Hub) unregister(key string, client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[key]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, key)
		}
	}
}
