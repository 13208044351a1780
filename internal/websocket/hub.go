package websocket

import (
	"encoding/json"
	"sync"

	"taskhub/internal/models"
	"taskhub/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Conn is the slice of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected websocket session, bound to the user that
// authenticated the upgrade.
type Client struct {
	UserID int
	Conn   Conn
	mu     sync.Mutex
}

// TaskEvent is the wire shape pushed to clients on task changes.
type TaskEvent struct {
	Type   string       `json:"type"`
	Task   *models.Task `json:"task,omitempty"`
	TaskID int          `json:"task_id,omitempty"`
}

type message struct {
	userID  int
	payload []byte
}

// Hub fans task events out to the owning user's connected clients.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	events     chan message
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		events:     make(chan message, 64),
	}
}

// Run owns the client set; call it once from a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
		case msg := <-h.events:
			for client := range h.clients {
				if client.UserID != msg.userID {
					continue
				}
				client.mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, msg.payload)
				client.mu.Unlock()
				if err != nil {
					delete(h.clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}

// NotifyTask pushes a task change to the owner's clients. Delivery is
// best effort: a full event queue drops the event rather than blocking
// the request that triggered it.
func (h *Hub) NotifyTask(userID int, eventType string, task *models.Task) {
	h.publish(userID, TaskEvent{Type: eventType, Task: task})
}

func (h *Hub) NotifyTaskDeleted(userID, taskID int) {
	h.publish(userID, TaskEvent{Type: "task_deleted", TaskID: taskID})
}

func (h *Hub) publish(userID int, event TaskEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	select {
	case h.events <- message{userID: userID, payload: payload}:
	default:
		logger.ErrorLogger.Error("Task event dropped: hub queue full",
			zap.Int("user_id", userID))
	}
}
