package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"devconnect/internal/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) TouchLastSeen(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockConnectionRepo struct {
	mock.Mock
}

func (m *MockConnectionRepo) CreateRequest(ctx context.Context, r *domain.ConnectionRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockConnectionRepo) GetRequestByID(ctx context.Context, id int64) (*domain.ConnectionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRepo) FindPendingBetween(ctx context.Context, userA, userB int64) (*domain.ConnectionRequest, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRepo) ListReceivedRequests(ctx context.Context, recipientID int64) ([]*domain.ConnectionRequest, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRepo) ListSentRequests(ctx context.Context, requesterID int64) ([]*domain.ConnectionRequest, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRepo) AcceptRequest(ctx context.Context, requestID int64) (*domain.Connection, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepo) RejectRequest(ctx context.Context, requestID int64) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockConnectionRepo) GetConnectionByID(ctx context.Context, id int64) (*domain.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepo) FindConnectionBetween(ctx context.Context, userA, userB int64) (*domain.Connection, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepo) ListConnectionsForUser(ctx context.Context, userID int64) ([]*domain.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Connection), args.Error(1)
}

func (m *MockConnectionRepo) DeleteConnection(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConnectionRepo) ListDiscoverable(ctx context.Context, userID int64) ([]*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) ListBetween(ctx context.Context, userA, userB int64, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, userA, userB, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// fakeNotifier records emits and lets tests control who is online.
type fakeNotifier struct {
	online map[int64]bool
	events []emittedEvent
}

type emittedEvent struct {
	userID  int64
	event   string
	payload any
}

func newFakeNotifier(onlineUsers ...int64) *fakeNotifier {
	online := make(map[int64]bool, len(onlineUsers))
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakeNotifier{online: online}
}

func (f *fakeNotifier) Emit(userID int64, event string, payload any) bool {
	f.events = append(f.events, emittedEvent{userID: userID, event: event, payload: payload})
	return f.online[userID]
}

func (f *fakeNotifier) Online(userID int64) bool {
	return f.online[userID]
}

func (f *fakeNotifier) eventsFor(userID int64) []emittedEvent {
	var out []emittedEvent
	for _, e := range f.events {
		if e.userID == userID {
			out = append(out, e)
		}
	}
	return out
}
