package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSession(userID int64) *Session {
	return NewSession(userID, nil)
}

func TestHubPresence(t *testing.T) {
	t.Run("FirstBindComesOnline", func(t *testing.T) {
		h := NewHub()
		s := testSession(1)

		assert.True(t, h.Bind(s))
		assert.True(t, h.Online(1))
	})

	t.Run("SecondSessionDoesNotReannounce", func(t *testing.T) {
		h := NewHub()
		s1 := testSession(1)
		s2 := testSession(1)

		assert.True(t, h.Bind(s1))
		assert.False(t, h.Bind(s2))

		// dropping one of two sessions keeps the user online
		assert.False(t, h.Unbind(s1))
		assert.True(t, h.Online(1))

		assert.True(t, h.Unbind(s2))
		assert.False(t, h.Online(1))
	})

	t.Run("DuplicateBindIsNoop", func(t *testing.T) {
		h := NewHub()
		s := testSession(1)

		assert.True(t, h.Bind(s))
		assert.False(t, h.Bind(s))

		// one unbind is enough, the duplicate bind did not double-count
		assert.True(t, h.Unbind(s))
		assert.False(t, h.Online(1))
	})

	t.Run("DuplicateUnbindReportsOfflineOnce", func(t *testing.T) {
		h := NewHub()
		s := testSession(1)

		h.Bind(s)
		assert.True(t, h.Unbind(s))
		assert.False(t, h.Unbind(s))
	})

	t.Run("UnknownSessionUnbind", func(t *testing.T) {
		h := NewHub()
		assert.False(t, h.Unbind(testSession(9)))
	})
}

func TestCloseAllWhileQueueing(t *testing.T) {
	// A session mid-dispatch must not blow up when the hub shuts down
	// underneath it; queue just starts reporting false.
	for i := 0; i < 50; i++ {
		h := NewHub()
		s := testSession(1)
		h.Bind(s)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 1000; j++ {
				s.queue(Event{Type: EventNewMessage})
			}
		}()

		h.CloseAll()
		<-done

		assert.False(t, h.Online(1))
		assert.False(t, s.queue(Event{Type: EventNewMessage}))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := testSession(1)
	s.Close()
	s.Close()
	assert.False(t, s.queue(Event{Type: EventNewMessage}))
}

func TestHubEmit(t *testing.T) {
	t.Run("OfflineUserDrops", func(t *testing.T) {
		h := NewHub()
		assert.False(t, h.Emit(1, EventNewMessage, nil))
	})

	t.Run("DeliversToEverySession", func(t *testing.T) {
		h := NewHub()
		s1 := testSession(1)
		s2 := testSession(1)
		h.Bind(s1)
		h.Bind(s2)

		assert.True(t, h.Emit(1, EventNewMessage, map[string]int{"id": 1}))

		for _, s := range []*Session{s1, s2} {
			select {
			case ev := <-s.send:
				assert.Equal(t, EventNewMessage, ev.Type)
			default:
				t.Fatalf("session %s did not receive the event", s.ID)
			}
		}
	})

	t.Run("EmitToUsersSkipsOffline", func(t *testing.T) {
		h := NewHub()
		s := testSession(1)
		h.Bind(s)

		h.EmitToUsers([]int64{1, 2}, EventUserOnline, nil)

		select {
		case ev := <-s.send:
			assert.Equal(t, EventUserOnline, ev.Type)
		default:
			t.Fatal("bound session did not receive the event")
		}
	})
}
