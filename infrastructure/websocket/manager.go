package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"face-attendance/pkg/logger"
)

// Conn is the subset of *websocket.Conn the manager writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Message is the envelope pushed to subscribers.
type Message struct {
	Type      string      `json:"type"`
	Room      string      `json:"room,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type client struct {
	conn   Conn
	userID uuid.UUID
	room   string
	mu     sync.Mutex // serializes writes on conn
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Manager tracks connected clients by room.
type Manager struct {
	mu      sync.RWMutex
	clients map[Conn]*client
}

func NewManager() *Manager {
	return &Manager{clients: make(map[Conn]*client)}
}

func (m *Manager) RegisterClient(conn Conn, userID uuid.UUID, room string) {
	m.mu.Lock()
	m.clients[conn] = &client{conn: conn, userID: userID, room: room}
	total := len(m.clients)
	m.mu.Unlock()

	logger.WebSocket("client_registered", "Client registered", map[string]interface{}{
		"user_id": userID.String(),
		"room":    room,
		"clients": total,
	})
}

func (m *Manager) UnregisterClient(conn Conn) {
	m.mu.Lock()
	c, ok := m.clients[conn]
	delete(m.clients, conn)
	m.mu.Unlock()

	if ok {
		logger.WebSocket("client_unregistered", "Client unregistered", map[string]interface{}{"user_id": c.userID.String(), "room": c.room})
	}
}

// JoinRoom moves a client to another room.
func (m *Manager) JoinRoom(conn Conn, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[conn]; ok {
		c.room = room
	}
}

// BroadcastToRoom sends msg to every client in room and returns the number of
// successful deliveries. Clients that fail to receive are dropped.
func (m *Manager) BroadcastToRoom(room string, msg Message) int {
	msg.Room = room
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error(logger.CategoryWebSocket, "marshal", "Failed to marshal message", err, nil)
		return 0
	}

	m.mu.RLock()
	targets := make([]*client, 0)
	for _, c := range m.clients {
		if c.room == room {
			targets = append(targets, c)
		}
	}
	m.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			logger.Warn(logger.CategoryWebSocket, "write_failed", "Dropping client after write error", map[string]interface{}{"room": room, "error": err.Error()})
			m.UnregisterClient(c.conn)
			continue
		}
		sent++
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

type inbound struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// HandleMessage answers pings and room switches sent by clients.
func (m *Manager) HandleMessage(conn Conn, messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}

	m.mu.RLock()
	c, ok := m.clients[conn]
	m.mu.RUnlock()
	if !ok {
		return
	}

	switch in.Type {
	case "ping":
		reply, _ := json.Marshal(Message{Type: "pong", Timestamp: time.Now()})
		c.write(reply)
	case "join":
		if in.Room != "" {
			m.JoinRoom(conn, in.Room)
		}
	}
}
