package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/manv6/trumps-dashboard/internal/models"
)

// MessageHandler consumes inbound client traffic. The hub's run loop
// calls it from a single goroutine, so handlers see client join state
// without further locking.
type MessageHandler interface {
	HandleMessage(c *Client, raw []byte)
	HandleDisconnect(c *Client)
}

// Hub tracks which connections belong to which session and fans
// broadcasts out to them.
type Hub struct {
	// Session connections: session code -> set of clients
	sessions map[string]map[*Client]bool

	broadcast     chan *BroadcastMessage
	unregister    chan *Client
	handleMessage chan *ClientMessage

	handler MessageHandler
	metrics *Metrics

	mu sync.RWMutex
}

type BroadcastMessage struct {
	Code    string
	Message *models.WSMessage
}

// ClientMessage is one raw inbound frame plus its origin.
type ClientMessage struct {
	Client  *Client
	Message []byte
}

func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		sessions:      make(map[string]map[*Client]bool),
		broadcast:     make(chan *BroadcastMessage, 256),
		unregister:    make(chan *Client, 100),
		handleMessage: make(chan *ClientMessage, 256),
		metrics:       metrics,
	}
}

// SetHandler wires the message handler. Must be called before Run.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.handler = handler
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.unregister:
			h.detach(c)
			if h.handler != nil {
				h.handler.HandleDisconnect(c)
			}
			c.Close()

		case msg := <-h.handleMessage:
			if h.handler != nil {
				h.handler.HandleMessage(msg.Client, msg.Message)
			}

		case msg := <-h.broadcast:
			h.broadcastToSession(msg)
		}
	}
}

// Join attaches a client to a session's connection set.
func (h *Hub) Join(code string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[code] == nil {
		h.sessions[code] = make(map[*Client]bool)
		h.metrics.IncrementSessions()
	}
	h.sessions[code][c] = true

	_, user := c.session()
	log.Printf("WebSocket joined: session=%s user=%s (connections in session: %d)",
		code, user, len(h.sessions[code]))
}

func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	code, _ := c.session()
	if code == "" {
		return
	}
	if connections, ok := h.sessions[code]; ok {
		if connections[c] {
			delete(connections, c)
			if len(connections) == 0 {
				delete(h.sessions, code)
				h.metrics.DecrementSessions()
			}
		}
	}
}

func (h *Hub) broadcastToSession(msg *BroadcastMessage) {
	h.mu.RLock()
	connections := make([]*Client, 0, len(h.sessions[msg.Code]))
	for c := range h.sessions[msg.Code] {
		connections = append(connections, c)
	}
	h.mu.RUnlock()

	if len(connections) == 0 {
		return
	}

	data, err := json.Marshal(msg.Message)
	if err != nil {
		log.Printf("error marshaling broadcast: %v", err)
		h.metrics.IncrementBroadcastErrors()
		return
	}

	for _, c := range connections {
		c.Send(data)
	}
}

// BroadcastToSession queues a message for every connection attached to
// the session code. The send never blocks: the run loop both fills and
// drains this queue, so a full buffer drops the message instead.
func (h *Hub) BroadcastToSession(code string, message *models.WSMessage) {
	select {
	case h.broadcast <- &BroadcastMessage{Code: code, Message: message}:
	default:
		log.Printf("broadcast queue full, dropping message for session %s", code)
		h.metrics.IncrementBroadcastErrors()
	}
}

// SendToClient delivers a message to a single connection.
func (h *Hub) SendToClient(c *Client, message *models.WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("error marshaling message: %v", err)
		return
	}
	c.Send(data)
}

// Unregister queues a connection for detachment; the run loop notifies
// the handler so the participant's connected flag can be cleared.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}
