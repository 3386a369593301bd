package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Send pings to peer with this period; must be less than the read
	// deadline the handlers set.
	pingPeriod = 54 * time.Second
	// Outbound buffer per connection. A subscriber that falls this far
	// behind is dropped rather than allowed to block the publisher.
	sendBufferSize = 256
)

// wsConn is the slice of *websocket.Conn the subscriber needs. Tests
// substitute a fake.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber owns the write side of one live connection. All outbound
// traffic goes through the buffered send channel; Run drains it onto the
// wire with write deadlines and keepalive pings.
type Subscriber struct {
	conn wsConn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewSubscriber(conn wsConn) *Subscriber {
	return &Subscriber{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send marshals v and enqueues it for this connection only. It reports
// false when the subscriber is closed or its buffer is full.
func (s *Subscriber) Send(v any) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return s.enqueue(payload)
}

// enqueue never blocks: a closed or saturated subscriber rejects the
// payload and the caller decides whether to drop the connection.
func (s *Subscriber) enqueue(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// Close signals Run to flush a close frame and stop. Idempotent.
func (s *Subscriber) Close() {
	s.once.Do(func() { close(s.done) })
}

// Closed reports whether Close has been called.
func (s *Subscriber) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Run is the write pump. It must be the only goroutine writing to the
// connection; run it once per subscriber. Returns when the subscriber is
// closed or a write fails.
func (s *Subscriber) Run() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
