package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Migrate runs idempotent DDL migrations for the devconnect schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              BIGSERIAL PRIMARY KEY,
			name            VARCHAR(100) NOT NULL,
			email           VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			role            VARCHAR(100) NOT NULL DEFAULT '',
			place           VARCHAR(100) NOT NULL DEFAULT '',
			phone           VARCHAR(30)  NOT NULL DEFAULT '',
			is_active       BOOLEAN      NOT NULL DEFAULT TRUE,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_seen       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS connection_requests (
			id           BIGSERIAL   PRIMARY KEY,
			requester_id BIGINT      NOT NULL REFERENCES users(id),
			recipient_id BIGINT      NOT NULL REFERENCES users(id),
			status       VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			responded_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS connections (
			id           BIGSERIAL   PRIMARY KEY,
			user_a       BIGINT      NOT NULL REFERENCES users(id),
			user_b       BIGINT      NOT NULL REFERENCES users(id),
			connected_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_a, user_b),
			CHECK (user_a < user_b)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id           BIGSERIAL   PRIMARY KEY,
			sender_id    BIGINT      NOT NULL REFERENCES users(id),
			recipient_id BIGINT      NOT NULL REFERENCES users(id),
			content      TEXT        NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS skills (
			id      BIGSERIAL    PRIMARY KEY,
			user_id BIGINT       NOT NULL REFERENCES users(id),
			name    VARCHAR(100) NOT NULL,
			level   VARCHAR(30)  NOT NULL DEFAULT 'Intermediate'
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id           BIGSERIAL    PRIMARY KEY,
			user_id      BIGINT       NOT NULL REFERENCES users(id),
			title        VARCHAR(200) NOT NULL,
			description  TEXT         NOT NULL,
			technologies TEXT         NOT NULL DEFAULT '',
			github_link  TEXT         NOT NULL DEFAULT '',
			live_link    TEXT         NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Single pending request per unordered pair, either direction.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_pair
			ON connection_requests (LEAST(requester_id, recipient_id), GREATEST(requester_id, recipient_id))
			WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_requests_recipient ON connection_requests(recipient_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_requester ON connection_requests(requester_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_user_a ON connections(user_a)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_user_b ON connections(user_b)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair_created
			ON messages (LEAST(sender_id, recipient_id), GREATEST(sender_id, recipient_id), created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_skills_user ON skills(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
