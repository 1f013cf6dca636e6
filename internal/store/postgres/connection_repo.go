package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"devconnect/internal/domain"
)

const requestColumns = `id, requester_id, recipient_id, status, created_at, responded_at`

type ConnectionRepo struct {
	db *sql.DB
}

func NewConnectionRepo(db *sql.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

var _ domain.ConnectionRepository = (*ConnectionRepo)(nil)

func (r *ConnectionRepo) CreateRequest(ctx context.Context, req *domain.ConnectionRequest) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO connection_requests (requester_id, recipient_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, req.RequesterID, req.RecipientID, domain.RequestPending).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		// Two racing SendRequest calls can both pass the service-level
		// pending check; the partial unique index settles it.
		if isUniqueViolation(err) {
			return domain.ErrDuplicatePending
		}
		return fmt.Errorf("insert connection request: %w", err)
	}
	req.Status = domain.RequestPending
	return nil
}

func (r *ConnectionRepo) GetRequestByID(ctx context.Context, id int64) (*domain.ConnectionRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM connection_requests WHERE id = $1`, id))
}

func (r *ConnectionRepo) FindPendingBetween(ctx context.Context, userA, userB int64) (*domain.ConnectionRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE status = $1
		AND ((requester_id = $2 AND recipient_id = $3) OR (requester_id = $3 AND recipient_id = $2))
		LIMIT 1
	`, domain.RequestPending, userA, userB))
}

func (r *ConnectionRepo) ListReceivedRequests(ctx context.Context, recipientID int64) ([]*domain.ConnectionRequest, error) {
	return r.listRequests(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE recipient_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, recipientID, domain.RequestPending)
}

func (r *ConnectionRepo) ListSentRequests(ctx context.Context, requesterID int64) ([]*domain.ConnectionRequest, error) {
	return r.listRequests(ctx, `
		SELECT `+requestColumns+`
		FROM connection_requests
		WHERE requester_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, requesterID, domain.RequestPending)
}

// AcceptRequest resolves a pending request and creates the connection edge in
// a single transaction.
func (r *ConnectionRepo) AcceptRequest(ctx context.Context, requestID int64) (*domain.Connection, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	req, err := scanRequest(tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM connection_requests WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE connection_requests
		SET status = $1, responded_at = NOW()
		WHERE id = $2 AND status = $3
	`, domain.RequestAccepted, requestID, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return nil, domain.ErrAlreadyResolved
	}

	a, b := orderPair(req.RequesterID, req.RecipientID)
	conn := &domain.Connection{UserA: a, UserB: b}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO connections (user_a, user_b)
		VALUES ($1, $2)
		RETURNING id, connected_at
	`, a, b).Scan(&conn.ID, &conn.ConnectedAt); err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return conn, nil
}

func (r *ConnectionRepo) RejectRequest(ctx context.Context, requestID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connection_requests
		SET status = $1, responded_at = NOW()
		WHERE id = $2 AND status = $3
	`, domain.RequestRejected, requestID, domain.RequestPending)
	if err != nil {
		return fmt.Errorf("reject request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}

func (r *ConnectionRepo) GetConnectionByID(ctx context.Context, id int64) (*domain.Connection, error) {
	return scanConnection(r.db.QueryRowContext(ctx,
		`SELECT id, user_a, user_b, connected_at FROM connections WHERE id = $1`, id))
}

func (r *ConnectionRepo) FindConnectionBetween(ctx context.Context, userA, userB int64) (*domain.Connection, error) {
	a, b := orderPair(userA, userB)
	return scanConnection(r.db.QueryRowContext(ctx,
		`SELECT id, user_a, user_b, connected_at FROM connections WHERE user_a = $1 AND user_b = $2`, a, b))
}

func (r *ConnectionRepo) ListConnectionsForUser(ctx context.Context, userID int64) ([]*domain.Connection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_a, user_b, connected_at
		FROM connections
		WHERE user_a = $1 OR user_b = $1
		ORDER BY connected_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var res []*domain.Connection
	for rows.Next() {
		c := &domain.Connection{}
		if err := rows.Scan(&c.ID, &c.UserA, &c.UserB, &c.ConnectedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ConnectionRepo) DeleteConnection(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConnectionRepo) ListDiscoverable(ctx context.Context, userID int64) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE u.is_active
		AND u.id <> $1
		AND NOT EXISTS (
			SELECT 1 FROM connections c
			WHERE (c.user_a = u.id AND c.user_b = $1) OR (c.user_b = u.id AND c.user_a = $1)
		)
		AND NOT EXISTS (
			SELECT 1 FROM connection_requests cr
			WHERE cr.status = 'pending'
			AND ((cr.requester_id = u.id AND cr.recipient_id = $1) OR (cr.recipient_id = u.id AND cr.requester_id = $1))
		)
		ORDER BY u.name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list discoverable users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *ConnectionRepo) listRequests(ctx context.Context, query string, args ...any) ([]*domain.ConnectionRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var res []*domain.ConnectionRequest
	for rows.Next() {
		req := &domain.ConnectionRequest{}
		if err := rows.Scan(
			&req.ID,
			&req.RequesterID,
			&req.RecipientID,
			&req.Status,
			&req.CreatedAt,
			&req.RespondedAt,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		res = append(res, req)
	}
	return res, rows.Err()
}

func scanRequest(row *sql.Row) (*domain.ConnectionRequest, error) {
	req := &domain.ConnectionRequest{}
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RecipientID,
		&req.Status,
		&req.CreatedAt,
		&req.RespondedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return req, nil
}

func scanConnection(row *sql.Row) (*domain.Connection, error) {
	c := &domain.Connection{}
	err := row.Scan(&c.ID, &c.UserA, &c.UserB, &c.ConnectedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan connection: %w", err)
	}
	return c, nil
}

func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
