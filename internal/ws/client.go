package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 256
)

// clientConn is one websocket session. It implements rooms.Sink: outbound
// frames are enqueued on a buffered channel and drained by a single writer
// goroutine, so frames reach the socket in enqueue order.
type clientConn struct {
	id      string
	rawConn *websocket.Conn

	send      chan outEnvelope
	done      chan struct{}
	closeOnce sync.Once
}

func newClientConn(id string, rawConn *websocket.Conn) *clientConn {
	return &clientConn{
		id:      id,
		rawConn: rawConn,
		send:    make(chan outEnvelope, sendBuffer),
		done:    make(chan struct{}),
	}
}

// Send enqueues without blocking. A full buffer means the consumer is not
// keeping up; the frame is dropped, delivery here is best-effort and a
// dropped broadcast is never replayed.
func (c *clientConn) Send(event string, body any) bool {
	select {
	case c.send <- outEnvelope{Event: event, Body: body}:
		return true
	default:
		zap.L().Debug("ws.send_dropped",
			zap.String("conn_id", c.id),
			zap.String("event", event),
		)
		return false
	}
}

func (c *clientConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.rawConn.Close()
	})
}

// writePump owns all writes on the socket: queued frames plus the periodic
// liveness ping. Exactly one writePump runs per connection.
func (c *clientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.rawConn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case env := <-c.send:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.rawConn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.rawConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
