package server

import (
	"sync"
	"time"

	"portfolio-stream/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	maxMessageSize = 64 * 1024
)

// -----------------------------------------------------------------------------
// Connection abstraction. *websocket.Conn satisfies this; tests substitute
// their own transport.
// -----------------------------------------------------------------------------

type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one live connection record: the transport handle plus the
// liveness flag and interest set the push layer tracks for it. The registry
// owns the record from registration until disconnect.
type Client struct {
	id     string
	server *StreamServer
	conn   Conn

	send chan *models.MOutboundMessage
	ping chan struct{}
	done chan struct{}

	closeOnce sync.Once

	mu        sync.RWMutex
	alive     bool
	symbols   map[string]struct{}
	portfolio bool
}

// -----------------------------------------------------------------------------

func newClient(id string, server *StreamServer, conn Conn, sendBuffer int) *Client {
	return &Client{
		id:     id,
		server: server,
		conn:   conn,
		send:   make(chan *models.MOutboundMessage, sendBuffer),
		ping:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		// Portfolio interest defaults on; symbol interest starts empty.
		alive:     true,
		symbols:   make(map[string]struct{}),
		portfolio: true,
	}
}

// -----------------------------------------------------------------------------

func (c *Client) ID() string {
	return c.id
}

// -----------------------------------------------------------------------------
// Liveness flag (probe/ack cycle)
// -----------------------------------------------------------------------------

func (c *Client) Alive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alive
}

func (c *Client) SetAlive(alive bool) {
	c.mu.Lock()
	c.alive = alive
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Interest set
// -----------------------------------------------------------------------------

// Subscribe adds symbol keys to the interest set. Repeats are no-ops.
func (c *Client) Subscribe(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if key == "" {
			continue
		}
		c.symbols[key] = struct{}{}
	}
}

// Unsubscribe removes symbol keys; absent keys are no-ops.
func (c *Client) Unsubscribe(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.symbols, key)
	}
}

// Symbols returns a copy of the interest set.
func (c *Client) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.symbols))
	for key := range c.symbols {
		keys = append(keys, key)
	}
	return keys
}

func (c *Client) HasSymbol(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.symbols[key]
	return ok
}

func (c *Client) PortfolioSubscribed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.portfolio
}

func (c *Client) SetPortfolioSubscribed(subscribed bool) {
	c.mu.Lock()
	c.portfolio = subscribed
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Sending
// -----------------------------------------------------------------------------

// trySend queues a message for the write pump. A full queue means the client
// cannot keep up and counts as a send failure.
func (c *Client) trySend(msg *models.MOutboundMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// tryPing queues a liveness probe.
func (c *Client) tryPing() bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.ping <- struct{}{}:
		return true
	default:
		// A probe is already pending; that is good enough.
		return true
	}
}

// -----------------------------------------------------------------------------

// close releases the transport handle. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from the client
// Acts as the watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		c.server.dropClient(c)
		c.server.Logger.Info("Client %s disconnected", c.id)
	}()

	readWait := 3 * c.server.heartbeatInterval()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		// Probe acknowledgment: Suspect -> Alive
		c.SetAlive(true)
		c.conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.Logger.Info("WebSocket error on %s: %v", c.id, err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(readWait))
		c.server.handleControlMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to the client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.server.Logger.Info("Write error on %s: %v", c.id, err)
				c.server.dropClient(c)
				return
			}

		case <-c.ping:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.server.dropClient(c)
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
