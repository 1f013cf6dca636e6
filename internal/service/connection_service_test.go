package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"devconnect/internal/domain"
	"devconnect/internal/service"
)

func activeUser(id int64, name string) *domain.User {
	return &domain.User{ID: id, Name: name, IsActive: true}
}

func TestSendRequest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		notifier := newFakeNotifier(2)
		svc := service.NewConnectionService(conns, users, notifier)

		users.On("GetByID", mock.Anything, int64(2)).Return(activeUser(2, "Bob"), nil)
		users.On("GetByID", mock.Anything, int64(1)).Return(activeUser(1, "Alice"), nil)
		conns.On("FindConnectionBetween", mock.Anything, int64(1), int64(2)).Return(nil, nil)
		conns.On("FindPendingBetween", mock.Anything, int64(1), int64(2)).Return(nil, nil)
		conns.On("CreateRequest", mock.Anything, mock.MatchedBy(func(r *domain.ConnectionRequest) bool {
			return r.RequesterID == 1 && r.RecipientID == 2
		})).Return(nil)

		req, err := svc.SendRequest(context.Background(), 1, 2)
		assert.NoError(t, err)
		assert.NotNil(t, req)

		// recipient gets a live notification
		events := notifier.eventsFor(2)
		assert.Len(t, events, 1)
		assert.Equal(t, "requestReceived", events[0].event)
	})

	t.Run("SelfTarget", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		req, err := svc.SendRequest(context.Background(), 1, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
		assert.Nil(t, req)
		conns.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})

	t.Run("RecipientMissing", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		users.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

		req, err := svc.SendRequest(context.Background(), 1, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, req)
	})

	t.Run("AlreadyConnected", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		users.On("GetByID", mock.Anything, int64(2)).Return(activeUser(2, "Bob"), nil)
		conns.On("FindConnectionBetween", mock.Anything, int64(1), int64(2)).
			Return(&domain.Connection{ID: 5, UserA: 1, UserB: 2}, nil)

		req, err := svc.SendRequest(context.Background(), 1, 2)
		assert.ErrorIs(t, err, domain.ErrAlreadyConnected)
		assert.Nil(t, req)
	})

	t.Run("DuplicatePendingEitherDirection", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		users.On("GetByID", mock.Anything, int64(2)).Return(activeUser(2, "Bob"), nil)
		conns.On("FindConnectionBetween", mock.Anything, int64(1), int64(2)).Return(nil, nil)
		// pending request was sent by the other side
		conns.On("FindPendingBetween", mock.Anything, int64(1), int64(2)).
			Return(&domain.ConnectionRequest{ID: 3, RequesterID: 2, RecipientID: 1, Status: domain.RequestPending}, nil)

		req, err := svc.SendRequest(context.Background(), 1, 2)
		assert.ErrorIs(t, err, domain.ErrDuplicatePending)
		assert.Nil(t, req)
		conns.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})
}

func TestRespond(t *testing.T) {
	pending := func() *domain.ConnectionRequest {
		return &domain.ConnectionRequest{
			ID:          10,
			RequesterID: 1,
			RecipientID: 2,
			Status:      domain.RequestPending,
			CreatedAt:   time.Now(),
		}
	}

	t.Run("Accept", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		accepted := pending()
		accepted.Status = domain.RequestAccepted

		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(pending(), nil).Once()
		conns.On("AcceptRequest", mock.Anything, int64(10)).
			Return(&domain.Connection{ID: 7, UserA: 1, UserB: 2, ConnectedAt: time.Now()}, nil)
		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(accepted, nil).Once()

		result, err := svc.Respond(context.Background(), 10, 2, service.DecisionAccept)
		assert.NoError(t, err)
		assert.Equal(t, domain.RequestAccepted, result.Request.Status)
		assert.NotNil(t, result.Connection)
		assert.Equal(t, int64(7), result.Connection.ID)
	})

	t.Run("Reject", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		rejected := pending()
		rejected.Status = domain.RequestRejected

		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(pending(), nil).Once()
		conns.On("RejectRequest", mock.Anything, int64(10)).Return(nil)
		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(rejected, nil).Once()

		result, err := svc.Respond(context.Background(), 10, 2, service.DecisionReject)
		assert.NoError(t, err)
		assert.Equal(t, domain.RequestRejected, result.Request.Status)
		assert.Nil(t, result.Connection)
		conns.AssertNotCalled(t, "AcceptRequest", mock.Anything, mock.Anything)
	})

	t.Run("OnlyRecipientMayRespond", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(pending(), nil)

		result, err := svc.Respond(context.Background(), 10, 1, service.DecisionAccept)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Nil(t, result)
	})

	t.Run("AlreadyResolved", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		resolved := pending()
		resolved.Status = domain.RequestAccepted
		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(resolved, nil)

		result, err := svc.Respond(context.Background(), 10, 2, service.DecisionAccept)
		assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
		assert.Nil(t, result)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		conns.On("GetRequestByID", mock.Anything, int64(77)).Return(nil, nil)

		result, err := svc.Respond(context.Background(), 77, 2, service.DecisionAccept)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, result)
	})

	t.Run("BadDecision", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		conns.On("GetRequestByID", mock.Anything, int64(10)).Return(pending(), nil)

		result, err := svc.Respond(context.Background(), 10, 2, service.Decision("maybe"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, result)
	})
}

func TestRemove(t *testing.T) {
	edge := &domain.Connection{ID: 7, UserA: 1, UserB: 2}

	t.Run("EitherEndpointMayRemove", func(t *testing.T) {
		for _, actor := range []int64{1, 2} {
			conns := new(MockConnectionRepo)
			users := new(MockUserRepo)
			svc := service.NewConnectionService(conns, users, newFakeNotifier())

			conns.On("GetConnectionByID", mock.Anything, int64(7)).Return(edge, nil)
			conns.On("DeleteConnection", mock.Anything, int64(7)).Return(nil)

			assert.NoError(t, svc.Remove(context.Background(), 7, actor))
		}
	})

	t.Run("ThirdPartyForbidden", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		conns.On("GetConnectionByID", mock.Anything, int64(7)).Return(edge, nil)

		err := svc.Remove(context.Background(), 7, 3)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		conns.AssertNotCalled(t, "DeleteConnection", mock.Anything, mock.Anything)
	})

	t.Run("UnknownConnection", func(t *testing.T) {
		conns := new(MockConnectionRepo)
		users := new(MockUserRepo)
		svc := service.NewConnectionService(conns, users, newFakeNotifier())

		conns.On("GetConnectionByID", mock.Anything, int64(99)).Return(nil, nil)

		err := svc.Remove(context.Background(), 99, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListConnections(t *testing.T) {
	conns := new(MockConnectionRepo)
	users := new(MockUserRepo)
	notifier := newFakeNotifier(2)
	svc := service.NewConnectionService(conns, users, notifier)

	conns.On("ListConnectionsForUser", mock.Anything, int64(1)).Return([]*domain.Connection{
		{ID: 7, UserA: 1, UserB: 2, ConnectedAt: time.Now()},
		{ID: 8, UserA: 1, UserB: 3, ConnectedAt: time.Now()},
	}, nil)
	users.On("GetByID", mock.Anything, int64(2)).Return(activeUser(2, "Bob"), nil)
	users.On("GetByID", mock.Anything, int64(3)).Return(activeUser(3, "Carol"), nil)

	list, err := svc.ListConnections(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].Peer.ID)
	assert.True(t, list[0].Online)
	assert.Equal(t, int64(3), list[1].Peer.ID)
	assert.False(t, list[1].Online)
}

func TestPeerIDs(t *testing.T) {
	conns := new(MockConnectionRepo)
	users := new(MockUserRepo)
	svc := service.NewConnectionService(conns, users, newFakeNotifier())

	conns.On("ListConnectionsForUser", mock.Anything, int64(2)).Return([]*domain.Connection{
		{ID: 7, UserA: 1, UserB: 2},
		{ID: 9, UserA: 2, UserB: 5},
	}, nil)

	ids, err := svc.PeerIDs(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 5}, ids)
}
