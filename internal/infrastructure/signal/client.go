package signal

import (
	"errors"
	"sync"
	"time"

	"teleconsult/internal/core/domain"

	"github.com/gorilla/websocket"
)

var errClientClosed = errors.New("client connection closed")

// Client is the connection handle: one authenticated WebSocket connection
// with the user's profile snapshot captured at handshake time. The transport
// layer owns the connection's lifetime; registries only reference clients.
type Client struct {
	id      string
	userID  domain.UserID
	profile domain.Profile

	conn *websocket.Conn
	send chan Frame

	mu     sync.RWMutex
	closed bool
}

func newClient(id string, user *domain.User, conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		id:      id,
		userID:  user.ID,
		profile: user.Snapshot(),
		conn:    conn,
		send:    make(chan Frame, sendBuffer),
	}
}

func (c *Client) UserID() domain.UserID   { return c.userID }
func (c *Client) Profile() domain.Profile { return c.profile }

// TrySend queues a frame without blocking. A full buffer or a closed client
// drops the frame; signaling delivery is best effort.
func (c *Client) TrySend(f Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// close marks the client closed and shuts down the write pump. Safe to call
// more than once.
func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.conn.Close()
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings. It exits when the send channel is closed or a write
// fails; writes happen only on this goroutine.
func (c *Client) writePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
