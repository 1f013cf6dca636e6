package service

import (
	"context"
	"fmt"

	"devconnect/internal/content"
	"devconnect/internal/domain"
)

// ProfileService manages the skills and projects attached to a profile.
// Writes are owner-only.
type ProfileService struct {
	skills   domain.SkillRepository
	projects domain.ProjectRepository
}

func NewProfileService(skills domain.SkillRepository, projects domain.ProjectRepository) *ProfileService {
	return &ProfileService{skills: skills, projects: projects}
}

// AddSkillInput carries a new skill entry.
type AddSkillInput struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

func (s *ProfileService) AddSkill(ctx context.Context, userID int64, in AddSkillInput) (*domain.Skill, error) {
	name := content.Sanitize(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: skill name cannot be empty", domain.ErrInvalidInput)
	}
	skill := &domain.Skill{
		UserID: userID,
		Name:   name,
		Level:  content.Sanitize(in.Level),
	}
	if err := s.skills.Create(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *ProfileService) ListSkills(ctx context.Context, userID int64) ([]*domain.Skill, error) {
	return s.skills.ListForUser(ctx, userID)
}

func (s *ProfileService) RemoveSkill(ctx context.Context, skillID, actingUserID int64) error {
	skill, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		return err
	}
	if skill == nil {
		return domain.ErrNotFound
	}
	if skill.UserID != actingUserID {
		return domain.ErrForbidden
	}
	return s.skills.Delete(ctx, skillID)
}

// ProjectInput carries the editable project fields.
type ProjectInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	GithubLink   string `json:"github_link"`
	LiveLink     string `json:"live_link"`
}

func (p ProjectInput) sanitized() (ProjectInput, error) {
	p.Title = content.Sanitize(p.Title)
	if p.Title == "" {
		return p, fmt.Errorf("%w: project title cannot be empty", domain.ErrInvalidInput)
	}
	p.Description = content.Sanitize(p.Description)
	p.Technologies = content.Sanitize(p.Technologies)
	p.GithubLink = content.Sanitize(p.GithubLink)
	p.LiveLink = content.Sanitize(p.LiveLink)
	return p, nil
}

func (s *ProfileService) AddProject(ctx context.Context, userID int64, in ProjectInput) (*domain.Project, error) {
	in, err := in.sanitized()
	if err != nil {
		return nil, err
	}
	project := &domain.Project{
		UserID:       userID,
		Title:        in.Title,
		Description:  in.Description,
		Technologies: in.Technologies,
		GithubLink:   in.GithubLink,
		LiveLink:     in.LiveLink,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProfileService) ListProjects(ctx context.Context, userID int64) ([]*domain.Project, error) {
	return s.projects.ListForUser(ctx, userID)
}

func (s *ProfileService) UpdateProject(ctx context.Context, projectID, actingUserID int64, in ProjectInput) (*domain.Project, error) {
	project, err := s.ownedProject(ctx, projectID, actingUserID)
	if err != nil {
		return nil, err
	}
	in, err = in.sanitized()
	if err != nil {
		return nil, err
	}
	project.Title = in.Title
	project.Description = in.Description
	project.Technologies = in.Technologies
	project.GithubLink = in.GithubLink
	project.LiveLink = in.LiveLink
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProfileService) RemoveProject(ctx context.Context, projectID, actingUserID int64) error {
	if _, err := s.ownedProject(ctx, projectID, actingUserID); err != nil {
		return err
	}
	return s.projects.Delete(ctx, projectID)
}

func (s *ProfileService) ownedProject(ctx context.Context, projectID, actingUserID int64) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	if project.UserID != actingUserID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}
