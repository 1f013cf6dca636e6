package service

import (
	"context"
	"fmt"

	"devconnect/internal/content"
	"devconnect/internal/domain"
)

// UserService covers profile reads and updates.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateProfileInput carries the editable profile fields. Nil pointers leave
// the current value unchanged.
type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Role  *string `json:"role"`
	Place *string `json:"place"`
	Phone *string `json:"phone"`
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial update to the user's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := content.Sanitize(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		user.Name = name
	}
	if in.Role != nil {
		user.Role = content.Sanitize(*in.Role)
	}
	if in.Place != nil {
		user.Place = content.Sanitize(*in.Place)
	}
	if in.Phone != nil {
		user.Phone = content.Sanitize(*in.Phone)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft-deletes the account. Connections and messages stay in the
// store; the user just stops appearing anywhere.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.SoftDelete(ctx, user.ID)
}
