package services

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the slice of a client session the manager needs: an identity and a
// serialized JSON write.
type Conn interface {
	ID() string
	WriteJSON(v interface{}) error
}

// ClientConnection wraps one live websocket session. Writes go through the
// per-connection mutex because fiber's websocket conns are not safe for
// concurrent writers.
type ClientConnection struct {
	ConnID string
	Conn   *websocket.Conn
	mu     sync.Mutex
}

// ID returns the connection identifier.
func (c *ClientConnection) ID() string {
	return c.ConnID
}

// WriteJSON sends a JSON payload to the client.
func (c *ClientConnection) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// ConnectionManager manages all active WebSocket connections
type ConnectionManager struct {
	connections map[string]Conn
	mutex       sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]Conn),
	}
}

// Add adds a new connection
func (cm *ConnectionManager) Add(conn Conn) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.connections[conn.ID()] = conn
	log.Printf("✅ Connection added: %s (Total: %d)", conn.ID(), len(cm.connections))
}

// Remove removes a connection
func (cm *ConnectionManager) Remove(connID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	if _, exists := cm.connections[connID]; exists {
		delete(cm.connections, connID)
		log.Printf("❌ Connection removed: %s (Total: %d)", connID, len(cm.connections))
	}
}

// Count returns the number of active connections
func (cm *ConnectionManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.connections)
}

// Broadcast sends a payload to every connected client. Used by the agent to
// push proactive notifications; failures are logged per connection and do not
// abort the fan-out.
func (cm *ConnectionManager) Broadcast(v interface{}) {
	cm.mutex.RLock()
	conns := make([]Conn, 0, len(cm.connections))
	for _, conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(v); err != nil {
			log.Printf("⚠️  Failed to push to connection %s: %v", conn.ID(), err)
		}
	}
}
