package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"devconnect/internal/domain"
)

type SkillRepo struct {
	db *sql.DB
}

func NewSkillRepo(db *sql.DB) *SkillRepo {
	return &SkillRepo{db: db}
}

var _ domain.SkillRepository = (*SkillRepo)(nil)

func (r *SkillRepo) Create(ctx context.Context, s *domain.Skill) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO skills (user_id, name, level) VALUES (?, ?, ?)`,
		s.UserID, s.Name, s.Level)
	if err != nil {
		return fmt.Errorf("insert skill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	s.ID = id
	return nil
}

func (r *SkillRepo) GetByID(ctx context.Context, id int64) (*domain.Skill, error) {
	s := &domain.Skill{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, level FROM skills WHERE id = ?`, id).Scan(
		&s.ID, &s.UserID, &s.Name, &s.Level)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return s, nil
}

func (r *SkillRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, level FROM skills WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var res []*domain.Skill
	for rows.Next() {
		s := &domain.Skill{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Level); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *SkillRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
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
