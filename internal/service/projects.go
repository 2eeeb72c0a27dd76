package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/validation"
)

type ProjectService struct {
	store    repository.Store
	validate *validation.Validator
	now      func() time.Time
}

type CreateProjectInput struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateProjectInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type AddMemberInput struct {
	UserID string `json:"userId" validate:"required"`
}

func (s *ProjectService) Create(ctx context.Context, p Principal, in CreateProjectInput) (*models.Project, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	proj := &models.Project{
		OwnerID:     p.UserID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	proj.ApplyDefaults(s.now())
	if err := s.store.Projects().Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return proj, nil
}

// List returns every project for admins and the caller's projects otherwise.
func (s *ProjectService) List(ctx context.Context, p Principal) ([]models.Project, error) {
	if p.IsAdmin() {
		return s.store.Projects().List(ctx)
	}
	return s.store.Projects().ListForMember(ctx, p.UserID)
}

func (s *ProjectService) Get(ctx context.Context, p Principal, id string) (*models.Project, error) {
	proj, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccessProject(p, proj) {
		return nil, apperrors.Forbidden("not a member of this project")
	}
	return proj, nil
}

// loadManaged fetches a project the caller may administer.
func (s *ProjectService) loadManaged(ctx context.Context, p Principal, id string) (*models.Project, error) {
	proj, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageProject(p, proj) {
		return nil, apperrors.Forbidden("only the project owner or an admin can do this")
	}
	return proj, nil
}

func (s *ProjectService) Update(ctx context.Context, p Principal, id string, in UpdateProjectInput) (*models.Project, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	proj, err := s.loadManaged(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		proj.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		proj.Description = *in.Description
	}
	proj.UpdatedAt = s.now()
	if err := s.store.Projects().Update(ctx, proj); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return proj, nil
}

func (s *ProjectService) Delete(ctx context.Context, p Principal, id string) error {
	if _, err := s.loadManaged(ctx, p, id); err != nil {
		return err
	}
	return s.store.Projects().Delete(ctx, id)
}

func (s *ProjectService) AddMember(ctx context.Context, p Principal, id string, in AddMemberInput) (*models.Project, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.loadManaged(ctx, p, id); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if err := s.store.Projects().AddMember(ctx, id, in.UserID); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	return s.store.Projects().GetByID(ctx, id)
}

// RemoveMember drops userID from the project and unassigns their tasks in
// it. The owner cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, p Principal, id, userID string) (*models.Project, error) {
	proj, err := s.loadManaged(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if userID == proj.OwnerID {
		return nil, apperrors.Validation("userId", "owner", "the project owner cannot be removed")
	}
	if err := s.store.Projects().RemoveMember(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.store.Projects().GetByID(ctx, id)
}
