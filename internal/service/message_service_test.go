package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"devconnect/internal/domain"
	"devconnect/internal/security"
	"devconnect/internal/service"
)

type fakeConnectionChecker struct {
	connected bool
}

func (f fakeConnectionChecker) IsConnected(ctx context.Context, a, b int64) (bool, error) {
	return f.connected, nil
}

func newEncryptor(t *testing.T) *security.Encryptor {
	t.Helper()
	enc, err := security.NewEncryptor([]byte("test-encryption-key"))
	assert.NoError(t, err)
	return enc
}

func TestSendMessage(t *testing.T) {
	enc := newEncryptor(t)

	t.Run("Success", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		notifier := newFakeNotifier(2)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: true}, enc, notifier, 1000, 5000)

		users.On("GetByID", mock.Anything, int64(1)).Return(activeUser(1, "Alice"), nil)
		msgs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
			// stored ciphertext, never the plaintext
			return m.SenderID == 1 && m.RecipientID == 2 && m.Content != "hello"
		})).Run(func(args mock.Arguments) {
			m := args.Get(1).(*domain.Message)
			m.ID = 42
			m.CreatedAt = time.Now()
		}).Return(nil)

		resp, err := svc.Send(context.Background(), 1, 2, "hello")
		assert.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "hello", resp.Content)
		assert.Equal(t, "Alice", resp.SenderName)

		events := notifier.eventsFor(2)
		assert.Len(t, events, 1)
		assert.Equal(t, "newMessage", events[0].event)
	})

	t.Run("NotConnected", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: false}, enc, newFakeNotifier(), 1000, 5000)

		resp, err := svc.Send(context.Background(), 1, 2, "hello")
		assert.ErrorIs(t, err, domain.ErrNotConnected)
		assert.Nil(t, resp)
		msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("EmptyAfterSanitize", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: true}, enc, newFakeNotifier(), 1000, 5000)

		for _, input := range []string{"", "   ", "<b></b>"} {
			resp, err := svc.Send(context.Background(), 1, 2, input)
			assert.ErrorIs(t, err, domain.ErrEmptyContent)
			assert.Nil(t, resp)
		}
	})

	t.Run("SelfTarget", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: true}, enc, newFakeNotifier(), 1000, 5000)

		resp, err := svc.Send(context.Background(), 1, 1, "hello")
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
		assert.Nil(t, resp)
	})

	t.Run("ContentTooLong", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: true}, enc, newFakeNotifier(), 1000, 5)

		resp, err := svc.Send(context.Background(), 1, 2, "toolong")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, resp)
	})
}

func TestMessageHistory(t *testing.T) {
	enc := newEncryptor(t)

	encrypt := func(t *testing.T, plain string) string {
		t.Helper()
		c, err := enc.Encrypt(plain)
		assert.NoError(t, err)
		return c
	}

	t.Run("ChronologicalOrder", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: true}, enc, newFakeNotifier(), 1000, 5000)

		now := time.Now()
		// repo returns newest first
		msgs.On("ListBetween", mock.Anything, int64(1), int64(2), 1000).Return([]*domain.Message{
			{ID: 3, SenderID: 2, RecipientID: 1, Content: encrypt(t, "third"), CreatedAt: now},
			{ID: 2, SenderID: 1, RecipientID: 2, Content: encrypt(t, "second"), CreatedAt: now.Add(-time.Minute)},
			{ID: 1, SenderID: 1, RecipientID: 2, Content: encrypt(t, "first"), CreatedAt: now.Add(-2 * time.Minute)},
		}, nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(activeUser(1, "Alice"), nil)
		users.On("GetByID", mock.Anything, int64(2)).Return(activeUser(2, "Bob"), nil)

		history, err := svc.History(context.Background(), 1, 2)
		assert.NoError(t, err)
		assert.Len(t, history, 3)
		assert.Equal(t, "first", history[0].Content)
		assert.Equal(t, "second", history[1].Content)
		assert.Equal(t, "third", history[2].Content)
		assert.Equal(t, "Bob", history[2].SenderName)
	})

	t.Run("NotConnected", func(t *testing.T) {
		msgs := new(MockMessageRepo)
		users := new(MockUserRepo)
		svc := service.NewMessageService(msgs, users, fakeConnectionChecker{connected: false}, enc, newFakeNotifier(), 1000, 5000)

		history, err := svc.History(context.Background(), 1, 2)
		assert.ErrorIs(t, err, domain.ErrNotConnected)
		assert.Nil(t, history)
		msgs.AssertNotCalled(t, "ListBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
