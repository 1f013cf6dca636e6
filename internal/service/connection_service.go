package service

import (
	"context"
	"fmt"
	"time"

	"devconnect/internal/domain"
)

// Decision is a recipient's answer to a pending connection request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ConnectionService owns the request/accept/reject/remove lifecycle of
// relationships between users.
type ConnectionService struct {
	connections domain.ConnectionRepository
	users       domain.UserRepository
	notifier    Notifier
}

func NewConnectionService(
	connections domain.ConnectionRepository,
	users domain.UserRepository,
	notifier Notifier,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		users:       users,
		notifier:    notifier,
	}
}

// UserSummary is the public slice of a user embedded in connection and
// request listings.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Place string `json:"place,omitempty"`
}

// RequestSummary is a connection request with its counterpart users joined
// in.
type RequestSummary struct {
	ID          int64                `json:"id"`
	Status      domain.RequestStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	RespondedAt *time.Time           `json:"responded_at,omitempty"`
	Requester   *UserSummary         `json:"requester"`
	Recipient   *UserSummary         `json:"recipient"`
}

// ConnectionSummary is an accepted connection as seen by one of its
// endpoints.
type ConnectionSummary struct {
	ConnectionID int64       `json:"connection_id"`
	Peer         UserSummary `json:"peer"`
	ConnectedAt  time.Time   `json:"connected_at"`
	Online       bool        `json:"online"`
}

// RespondResult carries the resolved request and, on accept, the connection
// edge created with it.
type RespondResult struct {
	Request    *domain.ConnectionRequest `json:"request"`
	Connection *domain.Connection        `json:"connection,omitempty"`
}

// SendRequest creates a pending connection request from requester to
// recipient and notifies the recipient's live sessions.
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID, recipientID int64) (*domain.ConnectionRequest, error) {
	if requesterID == recipientID {
		return nil, domain.ErrInvalidTarget
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if recipient == nil || !recipient.IsActive {
		return nil, domain.ErrNotFound
	}

	if conn, err := s.connections.FindConnectionBetween(ctx, requesterID, recipientID); err != nil {
		return nil, fmt.Errorf("check existing connection: %w", err)
	} else if conn != nil {
		return nil, domain.ErrAlreadyConnected
	}

	if pending, err := s.connections.FindPendingBetween(ctx, requesterID, recipientID); err != nil {
		return nil, fmt.Errorf("check pending request: %w", err)
	} else if pending != nil {
		return nil, domain.ErrDuplicatePending
	}

	req := &domain.ConnectionRequest{
		RequesterID: requesterID,
		RecipientID: recipientID,
	}
	if err := s.connections.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	summary, err := s.requestSummary(ctx, req)
	if err == nil {
		s.notifier.Emit(recipientID, eventRequestReceived, summary)
	}
	return req, nil
}

// Respond resolves a pending request. Only the recipient may respond.
// Accepting creates the connection edge atomically with the resolution.
// Rejecting is terminal for the request but does not block a fresh request
// between the same pair.
func (s *ConnectionService) Respond(ctx context.Context, requestID, actingUserID int64, decision Decision) (*RespondResult, error) {
	req, err := s.connections.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.RecipientID != actingUserID {
		return nil, domain.ErrForbidden
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrAlreadyResolved
	}

	switch decision {
	case DecisionAccept:
		conn, err := s.connections.AcceptRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		req, err = s.connections.GetRequestByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("reload request: %w", err)
		}
		return &RespondResult{Request: req, Connection: conn}, nil

	case DecisionReject:
		if err := s.connections.RejectRequest(ctx, requestID); err != nil {
			return nil, err
		}
		req, err = s.connections.GetRequestByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("reload request: %w", err)
		}
		return &RespondResult{Request: req}, nil

	default:
		return nil, fmt.Errorf("%w: decision must be accept or reject", domain.ErrInvalidInput)
	}
}

// Remove hard-deletes a connection edge. Either endpoint may remove it.
// Message history is retained; it only becomes reachable again once the pair
// reconnects.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, actingUserID int64) error {
	conn, err := s.connections.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	if conn == nil {
		return domain.ErrNotFound
	}
	if !conn.Involves(actingUserID) {
		return domain.ErrForbidden
	}
	return s.connections.DeleteConnection(ctx, connectionID)
}

// IsConnected reports whether an accepted connection exists between the two
// users.
func (s *ConnectionService) IsConnected(ctx context.Context, userA, userB int64) (bool, error) {
	conn, err := s.connections.FindConnectionBetween(ctx, userA, userB)
	if err != nil {
		return false, err
	}
	return conn != nil, nil
}

// PeerIDs returns the ids of every user holding an accepted connection with
// userID. Presence broadcasts are scoped to this set.
func (s *ConnectionService) PeerIDs(ctx context.Context, userID int64) ([]int64, error) {
	conns, err := s.connections.ListConnectionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.PeerID(userID))
	}
	return ids, nil
}

// ListDiscoverable returns users the given user could send a request to:
// everyone except themselves, their connections, and pending counterparts.
func (s *ConnectionService) ListDiscoverable(ctx context.Context, userID int64) ([]*UserSummary, error) {
	users, err := s.connections.ListDiscoverable(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]*UserSummary, 0, len(users))
	for _, u := range users {
		res = append(res, summarize(u))
	}
	return res, nil
}

// ListConnections returns the user's accepted connections with peer info and
// live presence joined in.
func (s *ConnectionService) ListConnections(ctx context.Context, userID int64) ([]*ConnectionSummary, error) {
	conns, err := s.connections.ListConnectionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]*ConnectionSummary, 0, len(conns))
	for _, c := range conns {
		peerID := c.PeerID(userID)
		peer, err := s.users.GetByID(ctx, peerID)
		if err != nil {
			return nil, fmt.Errorf("get peer %d: %w", peerID, err)
		}
		if peer == nil {
			continue
		}
		res = append(res, &ConnectionSummary{
			ConnectionID: c.ID,
			Peer:         *summarize(peer),
			ConnectedAt:  c.ConnectedAt,
			Online:       s.notifier.Online(peerID),
		})
	}
	return res, nil
}

// ListReceivedRequests returns the user's pending incoming requests.
func (s *ConnectionService) ListReceivedRequests(ctx context.Context, userID int64) ([]*RequestSummary, error) {
	reqs, err := s.connections.ListReceivedRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.requestSummaries(ctx, reqs)
}

// ListSentRequests returns the user's pending outgoing requests.
func (s *ConnectionService) ListSentRequests(ctx context.Context, userID int64) ([]*RequestSummary, error) {
	reqs, err := s.connections.ListSentRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.requestSummaries(ctx, reqs)
}

func (s *ConnectionService) requestSummaries(ctx context.Context, reqs []*domain.ConnectionRequest) ([]*RequestSummary, error) {
	res := make([]*RequestSummary, 0, len(reqs))
	for _, req := range reqs {
		summary, err := s.requestSummary(ctx, req)
		if err != nil {
			return nil, err
		}
		res = append(res, summary)
	}
	return res, nil
}

func (s *ConnectionService) requestSummary(ctx context.Context, req *domain.ConnectionRequest) (*RequestSummary, error) {
	requester, err := s.users.GetByID(ctx, req.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("get requester: %w", err)
	}
	recipient, err := s.users.GetByID(ctx, req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	return &RequestSummary{
		ID:          req.ID,
		Status:      req.Status,
		CreatedAt:   req.CreatedAt,
		RespondedAt: req.RespondedAt,
		Requester:   summarize(requester),
		Recipient:   summarize(recipient),
	}, nil
}

func summarize(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Role:  u.Role,
		Place: u.Place,
	}
}
