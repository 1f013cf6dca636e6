package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure. The
// driver reports the extended code on some paths and the message on others.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		strings.Contains(se.Error(), "UNIQUE constraint failed")
}

// Migrate runs idempotent DDL migrations for the devconnect schema.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			role VARCHAR(100) DEFAULT '',
			place VARCHAR(100) DEFAULT '',
			phone VARCHAR(30) DEFAULT '',
			is_active BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Connection requests
		`CREATE TABLE IF NOT EXISTS connection_requests (
			id INTEGER PRIMARY KEY,
			requester_id INTEGER NOT NULL,
			recipient_id INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			responded_at DATETIME DEFAULT NULL,
			FOREIGN KEY (requester_id) REFERENCES users(id),
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		);`,
		// Connection edges, normalized so user_a < user_b
		`CREATE TABLE IF NOT EXISTS connections (
			id INTEGER PRIMARY KEY,
			user_a INTEGER NOT NULL,
			user_b INTEGER NOT NULL,
			connected_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_a, user_b),
			CHECK (user_a < user_b),
			FOREIGN KEY (user_a) REFERENCES users(id),
			FOREIGN KEY (user_b) REFERENCES users(id)
		);`,
		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			sender_id INTEGER NOT NULL,
			recipient_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		);`,
		// Skills
		`CREATE TABLE IF NOT EXISTS skills (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name VARCHAR(100) NOT NULL,
			level VARCHAR(30) NOT NULL DEFAULT 'Intermediate',
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		// Projects
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL,
			technologies TEXT DEFAULT '',
			github_link TEXT DEFAULT '',
			live_link TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		// Single pending request per unordered pair, either direction.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_pair
			ON connection_requests (MIN(requester_id, recipient_id), MAX(requester_id, recipient_id))
			WHERE status = 'pending';`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_recipient ON connection_requests(recipient_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_requester ON connection_requests(requester_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_connections_user_a ON connections(user_a);`,
		`CREATE INDEX IF NOT EXISTS idx_connections_user_b ON connections(user_b);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair_created
			ON messages (MIN(sender_id, recipient_id), MAX(sender_id, recipient_id), created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_skills_user ON skills(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
