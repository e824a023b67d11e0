package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"DMRelay/logger"
)

const (
	writeDeadline = 5 * time.Second
	pingEvery     = 30 * time.Second
	pongWait      = 60 * time.Second
	readLimit     = 1 << 20 // 1MB
	sendQueueSize = 64
)

// outFrame is the envelope for every relay -> client event.
type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// wsConn owns one websocket for its lifetime: a buffered send queue drained
// by a single write pump, so fan-outs from many goroutines never interleave
// writes on the socket.
type wsConn struct {
	id   string
	sock *websocket.Conn

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWsConn(id string, sock *websocket.Conn) *wsConn {
	return &wsConn{
		id:   id,
		sock: sock,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

// Emit queues an event for delivery. Fire-and-forget: when the queue is full
// (slow consumer) the frame is dropped rather than blocking the fan-out.
func (c *wsConn) Emit(event string, payload any) error {
	b, err := json.Marshal(outFrame{Event: event, Data: payload})
	if err != nil {
		return errors.Wrapf(err, "marshal %s", event)
	}
	select {
	case c.send <- b:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	default:
		logger.Warnf("dropping %s frame for conn %s: send queue full", event, c.id)
		return nil
	}
}

// writePump serializes all socket writes and keeps the connection alive with
// periodic pings. Exits when the connection is closed or a write fails.
func (c *wsConn) writePump() {
	t := time.NewTicker(pingEvery)
	defer t.Stop()

	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Debug("write failed, stopping pump",
					zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-t.C:
			if err := c.sock.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}
