package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"nova/internal/models"
	"nova/internal/services"
)

// clientMessage is what the browser sends over the chat socket.
type clientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// serverMessage wraps everything the server pushes down the socket.
type serverMessage struct {
	Type    string              `json:"type"`
	Payload interface{}         `json:"payload,omitempty"`
	Action  *models.AgentAction `json:"action,omitempty"`
}

// WebSocketHandler handles the live chat socket. Each connection is driven by
// a single read loop; proactive pushes arrive through the connection manager.
type WebSocketHandler struct {
	connManager *services.ConnectionManager
	assistant   *services.AssistantService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(connManager *services.ConnectionManager, assistant *services.AssistantService) *WebSocketHandler {
	return &WebSocketHandler{connManager: connManager, assistant: assistant}
}

// Handle handles a new WebSocket connection
func (h *WebSocketHandler) Handle(c *websocket.Conn) {
	connID := uuid.New().String()

	conn := &services.ClientConnection{ConnID: connID, Conn: c}
	h.connManager.Add(conn)
	if m := services.GetMetrics(); m != nil {
		m.RecordWSConnect()
	}

	defer func() {
		h.connManager.Remove(connID)
		if m := services.GetMetrics(); m != nil {
			m.RecordWSDisconnect()
		}
	}()

	if err := conn.WriteJSON(serverMessage{Type: "connected"}); err != nil {
		log.Printf("⚠️  [WS] Failed to send hello to %s: %v", connID, err)
		return
	}

	for {
		var msg clientMessage
		if err := c.ReadJSON(&msg); err != nil {
			// Normal close paths land here too; nothing to clean up beyond
			// the deferred removal.
			return
		}

		if msg.Type != "chat_message" {
			conn.WriteJSON(serverMessage{
				Type:    "error",
				Payload: models.NewErrorResponse("Unknown message type: " + msg.Type),
			})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		resp := h.assistant.ProcessMessage(ctx, msg.Content)
		cancel()

		if err := conn.WriteJSON(serverMessage{Type: "chat_response", Payload: resp}); err != nil {
			log.Printf("⚠️  [WS] Failed to write to %s: %v", connID, err)
			return
		}
	}
}

// BroadcastAction pushes a freshly queued agent action to every client. Wired
// as the agent's notifier.
func (h *WebSocketHandler) BroadcastAction(action models.AgentAction) {
	h.connManager.Broadcast(serverMessage{Type: "notification", Action: &action})
}
