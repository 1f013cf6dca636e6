package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"devconnect/internal/domain"
	"devconnect/internal/service"
)

type MockSkillRepo struct {
	mock.Mock
}

func (m *MockSkillRepo) Create(ctx context.Context, s *domain.Skill) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSkillRepo) GetByID(ctx context.Context, id int64) (*domain.Skill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockSkillRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Skill, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Skill), args.Error(1)
}

func (m *MockSkillRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAddSkill(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		skills := new(MockSkillRepo)
		svc := service.NewProfileService(skills, new(MockProjectRepo))

		skills.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Skill) bool {
			return s.UserID == 1 && s.Name == "Go"
		})).Return(nil)

		skill, err := svc.AddSkill(context.Background(), 1, service.AddSkillInput{Name: " Go ", Level: "advanced"})
		assert.NoError(t, err)
		assert.Equal(t, "Go", skill.Name)
	})

	t.Run("EmptyName", func(t *testing.T) {
		skills := new(MockSkillRepo)
		svc := service.NewProfileService(skills, new(MockProjectRepo))

		skill, err := svc.AddSkill(context.Background(), 1, service.AddSkillInput{Name: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, skill)
		skills.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRemoveSkillOwnership(t *testing.T) {
	skills := new(MockSkillRepo)
	svc := service.NewProfileService(skills, new(MockProjectRepo))

	skills.On("GetByID", mock.Anything, int64(5)).Return(&domain.Skill{ID: 5, UserID: 1, Name: "Go"}, nil)

	err := svc.RemoveSkill(context.Background(), 5, 2)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	skills.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateProjectOwnership(t *testing.T) {
	projects := new(MockProjectRepo)
	svc := service.NewProfileService(new(MockSkillRepo), projects)

	projects.On("GetByID", mock.Anything, int64(3)).Return(&domain.Project{ID: 3, UserID: 1, Title: "Old"}, nil)

	t.Run("Forbidden", func(t *testing.T) {
		project, err := svc.UpdateProject(context.Background(), 3, 2, service.ProjectInput{Title: "New"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Nil(t, project)
	})

	t.Run("OwnerUpdates", func(t *testing.T) {
		projects.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Project) bool {
			return p.ID == 3 && p.Title == "New"
		})).Return(nil)

		project, err := svc.UpdateProject(context.Background(), 3, 1, service.ProjectInput{Title: "New"})
		assert.NoError(t, err)
		assert.Equal(t, "New", project.Title)
	})
}
