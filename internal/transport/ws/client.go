package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

var (
	errClientClosed   = errors.New("client closed")
	errSendBufferFull = errors.New("send buffer full")
)

// Client is one relay connection. Outbound events are queued on send and
// written by WritePump, so a slow peer never blocks a broadcast.
type Client struct {
	id     uuid.UUID
	label  string
	conn   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, label string, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		id:     id,
		label:  label,
		conn:   conn,
		logger: logger.With("conn_id", id.String(), "label", label),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() uuid.UUID { return c.id }

func (c *Client) Label() string { return c.label }

// enqueue never blocks.
func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close stops WritePump. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadPump blocks until the peer goes away or sends something that is not an
// InboundMessage, relaying every message through hub.
func (c *Client) ReadPump(ctx context.Context, hub *Hub) {
	c.conn.SetReadLimit(maxMessageSize)

	for {
		var msg InboundMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.logger.Debug("ws: client disconnected", "status", status)
			} else {
				c.logger.Debug("ws: read error", "error", err)
			}
			return
		}

		hub.Broadcast(MessageEvent(c.label, msg.Message))
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
// It closes the connection on a write failure, which ends ReadPump.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.logger.Debug("ws: write error", "error", err)
				c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.logger.Debug("ws: ping error", "error", err)
				c.conn.Close(websocket.StatusPolicyViolation, "ping failed")
				return
			}

		case <-c.done:
			return

		case <-ctx.Done():
			return
		}
	}
}
