package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"devconnect/internal/domain"
)

const projectColumns = `id, user_id, title, description, technologies, github_link, live_link, created_at`

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

var _ domain.ProjectRepository = (*ProjectRepo)(nil)

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (user_id, title, description, technologies, github_link, live_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.UserID, p.Title, p.Description, p.Technologies, p.GithubLink, p.LiveLink)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	p := &domain.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id).Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Technologies, &p.GithubLink, &p.LiveLink, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var res []*domain.Project
	for rows.Next() {
		p := &domain.Project{}
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Title, &p.Description, &p.Technologies, &p.GithubLink, &p.LiveLink, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, description = ?, technologies = ?, github_link = ?, live_link = ?
		WHERE id = ?
	`, p.Title, p.Description, p.Technologies, p.GithubLink, p.LiveLink, p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
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
