package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// Session is one live channel of one authenticated user. A user may hold any
// number of concurrent sessions (tabs, devices); each gets its own outbound
// queue so a broken session never blocks its siblings.
type Session struct {
	ID     string
	UserID int64

	conn *websocket.Conn

	// mu serializes queue against Close so a concurrent shutdown can never
	// send on the closed channel.
	mu     sync.Mutex
	closed bool
	send   chan Event
}

func NewSession(userID int64, conn *websocket.Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
	}
}

// queue enqueues an event without blocking. It reports false when the
// session is closed or the outbound buffer is full; the event is dropped for
// this session only.
func (s *Session) queue(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue down. Safe to call more than once and
// concurrently with queue.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// WritePump drains the outbound queue onto the wire and keeps the connection
// alive with pings. It owns all writes to the underlying connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-s.send:
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
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
