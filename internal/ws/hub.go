package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"LeadDesk/entity"
)

// ClientMessageHandler handles incoming WebSocket messages from console clients.
type ClientMessageHandler interface {
	HandleMarkRead(username, conversationID string) error
}

// Event represents a WebSocket event pushed to console clients.
type Event struct {
	Type string      `json:"type"` // "new_message", "message_status", "conversation_updated", "assignment", "read_receipt"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the handler for incoming client messages.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastMessage sends a new_message event to all connected console clients.
func (h *Hub) BroadcastMessage(msg entity.Message) {
	h.broadcast <- &Event{
		Type: "new_message",
		Data: msg,
	}
}

// BroadcastMessageStatus sends a message_status event when a delivery status
// advances.
func (h *Hub) BroadcastMessageStatus(msg entity.Message) {
	h.broadcast <- &Event{
		Type: "message_status",
		Data: map[string]string{
			"conversation_id": msg.ConversationID,
			"message_id":      msg.ID,
			"status":          msg.Status,
		},
	}
}

// BroadcastConversation sends a conversation_updated event.
func (h *Hub) BroadcastConversation(conv entity.Conversation) {
	h.broadcast <- &Event{
		Type: "conversation_updated",
		Data: conv,
	}
}

// BroadcastAssignment sends an assignment event.
func (h *Hub) BroadcastAssignment(conversationID, agentID string) {
	h.broadcast <- &Event{
		Type: "assignment",
		Data: map[string]string{
			"conversation_id": conversationID,
			"agent_id":        agentID,
		},
	}
}

// BroadcastReadReceipt sends a read_receipt event to all connected clients.
func (h *Hub) BroadcastReadReceipt(username, conversationID string) {
	h.broadcast <- &Event{
		Type: "read_receipt",
		Data: map[string]string{
			"username":        username,
			"conversation_id": conversationID,
		},
	}
}

// clientEvent represents an incoming WebSocket message from a console client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(username string, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		if h.log != nil {
			h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		}
		return
	}

	switch event.Type {
	case "mark_read":
		var data struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			if h.log != nil {
				h.log.Warn("failed to parse mark_read data", slog.String("error", err.Error()))
			}
			return
		}
		if data.ConversationID == "" {
			return
		}
		if err := h.handler.HandleMarkRead(username, data.ConversationID); err != nil {
			if h.log != nil {
				h.log.Error("failed to handle mark_read",
					slog.String("username", username),
					slog.String("conversation_id", data.ConversationID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
