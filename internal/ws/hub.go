package ws

import (
	"log"
	"sync"
)

// Hub is the process-wide presence registry. It tracks active sessions keyed
// by user ID and fans events out to them. Presence is ephemeral: the hub is
// the single source of truth for "online" and is rebuilt empty on restart.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[int64]map[*Session]struct{}),
	}
}

// Bind registers a session under its user ID. It returns true when this is
// the user's first active session, i.e. the user just came online. Binding
// the same session twice is a no-op.
func (h *Hub) Bind(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.UserID]
	if !ok {
		set = make(map[*Session]struct{})
		h.sessions[s.UserID] = set
	}
	if _, dup := set[s]; dup {
		return false
	}
	set[s] = struct{}{}
	return len(set) == 1
}

// Unbind removes a session. It returns true when the user's session set just
// became empty, i.e. the user went offline. Unbinding an unknown session is
// a no-op, so a disconnect racing a second Unbind reports offline at most
// once.
func (h *Hub) Unbind(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.UserID]
	if !ok {
		return false
	}
	if _, bound := set[s]; !bound {
		return false
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sessions, s.UserID)
		return true
	}
	return false
}

// Online reports whether the user has at least one active session.
func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID]) > 0
}

// Emit delivers an event to every active session of one user. Delivery is
// best-effort: it returns false when the user has no sessions and the event
// is dropped. The durable stores remain the source of truth.
func (h *Hub) Emit(userID int64, eventType string, payload any) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set, ok := h.sessions[userID]
	if !ok || len(set) == 0 {
		return false
	}
	ev := Event{Type: eventType, Payload: payload}
	for s := range set {
		if !s.queue(ev) {
			log.Printf("ws: dropping %s for user %d: session %s backed up", eventType, userID, s.ID)
		}
	}
	return true
}

// EmitToUsers fans an event out to several users.
func (h *Hub) EmitToUsers(userIDs []int64, eventType string, payload any) {
	for _, uid := range userIDs {
		h.Emit(uid, eventType, payload)
	}
}

// CloseAll drops every session, used on shutdown. Read loops observe the
// closed connections and unwind on their own.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for uid, set := range h.sessions {
		for s := range set {
			s.Close()
		}
		delete(h.sessions, uid)
	}
}
