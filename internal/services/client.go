package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/manv6/trumps-dashboard/internal/config"
	"github.com/manv6/trumps-dashboard/internal/models"
)

// Client represents a single WebSocket connection with its own send
// goroutine. A client starts unjoined; the router fills in the session
// code, user id and slot once a join-game message is accepted.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	// Joined state, written by the router when a join is accepted and
	// read by the pump goroutines for logging.
	stateMu     sync.RWMutex
	sessionCode string
	userID      string
	slot        int

	// Rate limiting
	messageCount int
	rateLimitMu  sync.Mutex
	lastReset    time.Time

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	closeMu sync.Mutex
}

// NewClient creates a new client instance in the unjoined state.
func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:      conn,
		send:      make(chan []byte, config.ClientSendBufferSize),
		hub:       hub,
		slot:      -1,
		lastReset: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// setSession records the joined state once a join is accepted.
func (c *Client) setSession(code, userID string, slot int) {
	c.stateMu.Lock()
	c.sessionCode = code
	c.userID = userID
	c.slot = slot
	c.stateMu.Unlock()
}

// session returns the joined session code and user id; both are empty
// while the client is unjoined.
func (c *Client) session() (code, userID string) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.sessionCode, c.userID
}

// Start begins the client's read and write pumps.
func (c *Client) Start() {
	c.hub.metrics.IncrementConnections()
	go c.writePump()
	go c.readPump()
}

// Wait blocks until the connection is torn down. The HTTP handler uses
// it to keep the upgraded request alive.
func (c *Client) Wait() {
	<-c.ctx.Done()
}

// writePump handles outgoing messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()

			if err != nil {
				code, user := c.session()
				log.Printf("write error (session=%s, user=%s): %v", code, user, err)
				c.hub.metrics.IncrementBroadcastErrors()
				return
			}
			c.hub.metrics.IncrementMessagesSent()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()

			if err != nil {
				code, _ := c.session()
				log.Printf("ping error (session=%s): %v", code, err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump handles incoming messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.metrics.DecrementConnections()
		c.hub.Unregister(c)
	}()

	for {
		readCtx, cancel := context.WithTimeout(c.ctx, config.PongTimeout)
		_, message, err := c.conn.Read(readCtx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.hub.metrics.IncrementConnectionErrors()
			}
			return
		}

		if !c.checkRateLimit() {
			code, user := c.session()
			log.Printf("rate limit exceeded (session=%s, user=%s)", code, user)
			c.hub.metrics.IncrementRateLimitViolations()
			c.hub.SendToClient(c, models.NewErrorMessage("Rate limit exceeded. Please slow down."))
			continue
		}

		c.hub.metrics.IncrementMessagesReceived()

		c.hub.handleMessage <- &ClientMessage{
			Client:  c,
			Message: message,
		}
	}
}

// checkRateLimit verifies the client hasn't exceeded message rate limits.
func (c *Client) checkRateLimit() bool {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	now := time.Now()
	if now.Sub(c.lastReset) > config.RateLimitWindow {
		c.messageCount = 0
		c.lastReset = now
	}

	c.messageCount++
	return c.messageCount <= config.MaxMessagesPerSecond
}

// Send queues a message for sending to the client.
func (c *Client) Send(message []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		// Channel full, client is too slow.
		code, user := c.session()
		log.Printf("send buffer full, closing slow client (session=%s, user=%s)", code, user)
		c.hub.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// Close cleanly shuts down the client connection.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	close(c.send)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}
