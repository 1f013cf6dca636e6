package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	TouchLastSeen(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
}

// ConnectionRepository defines persistence operations for connection
// requests and connection edges. AcceptRequest is the only multi-row
// mutation and must resolve the request and create the edge in one
// transaction.
type ConnectionRepository interface {
	CreateRequest(ctx context.Context, r *ConnectionRequest) error
	GetRequestByID(ctx context.Context, id int64) (*ConnectionRequest, error)
	FindPendingBetween(ctx context.Context, userA, userB int64) (*ConnectionRequest, error)
	ListReceivedRequests(ctx context.Context, recipientID int64) ([]*ConnectionRequest, error)
	ListSentRequests(ctx context.Context, requesterID int64) ([]*ConnectionRequest, error)
	AcceptRequest(ctx context.Context, requestID int64) (*Connection, error)
	RejectRequest(ctx context.Context, requestID int64) error

	GetConnectionByID(ctx context.Context, id int64) (*Connection, error)
	FindConnectionBetween(ctx context.Context, userA, userB int64) (*Connection, error)
	ListConnectionsForUser(ctx context.Context, userID int64) ([]*Connection, error)
	DeleteConnection(ctx context.Context, id int64) error

	// ListDiscoverable returns active users excluding userID itself, its
	// connected peers and any user with a pending request in either
	// direction, ordered by name.
	ListDiscoverable(ctx context.Context, userID int64) ([]*User, error)
}

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListBetween returns up to limit most recent messages between two
	// users, newest first. Callers reverse for chronological display.
	ListBetween(ctx context.Context, userA, userB int64, limit int) ([]*Message, error)
}

// SkillRepository defines persistence operations for user skills.
type SkillRepository interface {
	Create(ctx context.Context, s *Skill) error
	GetByID(ctx context.Context, id int64) (*Skill, error)
	ListForUser(ctx context.Context, userID int64) ([]*Skill, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectRepository defines persistence operations for user projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListForUser(ctx context.Context, userID int64) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id int64) error
}
