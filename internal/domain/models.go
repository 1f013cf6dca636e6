package domain

import "time"

// User represents an application user.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Role           string    `db:"role" json:"role,omitempty"`
	Place          string    `db:"place" json:"place,omitempty"`
	Phone          string    `db:"phone" json:"phone,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
}

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// ConnectionRequest is a directional request from one user to another.
// At most one pending request may exist per user pair, in either direction.
type ConnectionRequest struct {
	ID          int64         `db:"id" json:"id"`
	RequesterID int64         `db:"requester_id" json:"requester_id"`
	RecipientID int64         `db:"recipient_id" json:"recipient_id"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	RespondedAt *time.Time    `db:"responded_at" json:"responded_at,omitempty"`
}

// Connection is an undirected edge between two users, created exactly once
// when a request is accepted. The store layer keeps UserA < UserB so a pair
// always maps to a single row.
type Connection struct {
	ID          int64     `db:"id" json:"id"`
	UserA       int64     `db:"user_a" json:"user_a"`
	UserB       int64     `db:"user_b" json:"user_b"`
	ConnectedAt time.Time `db:"connected_at" json:"connected_at"`
}

// PeerID returns the other endpoint of the edge.
func (c *Connection) PeerID(userID int64) int64 {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// Involves reports whether userID is one of the edge's endpoints.
func (c *Connection) Involves(userID int64) bool {
	return c.UserA == userID || c.UserB == userID
}

// Message is a direct message between two connected users.
// Content is encrypted at rest; messages are immutable once created.
type Message struct {
	ID          int64     `db:"id" json:"id"`
	SenderID    int64     `db:"sender_id" json:"sender_id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Skill is a single entry of a user's skill list.
type Skill struct {
	ID     int64  `db:"id" json:"id"`
	UserID int64  `db:"user_id" json:"user_id"`
	Name   string `db:"name" json:"name"`
	Level  string `db:"level" json:"level"`
}

// Project is a portfolio entry owned by a user.
type Project struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Technologies string    `db:"technologies" json:"technologies,omitempty"`
	GithubLink   string    `db:"github_link" json:"github_link,omitempty"`
	LiveLink     string    `db:"live_link" json:"live_link,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
