package service

import (
	"context"
	"fmt"
	"time"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
	"taskhub/internal/repository"
	"taskhub/internal/validation"
)

type CommentService struct {
	store         repository.Store
	validate      *validation.Validator
	notifications *NotificationService
	window        time.Duration
	now           func() time.Time
}

type CommentInput struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

func (s *CommentService) taskFor(ctx context.Context, p Principal, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	proj, err := s.store.Projects().GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !canAccessProject(p, proj) {
		return nil, apperrors.Forbidden("not a member of this project")
	}
	return task, nil
}

// Add appends a comment and notifies every other participant of the task
// once: its creator, its assignee and earlier commenters.
func (s *CommentService) Add(ctx context.Context, p Principal, taskID string, in CommentInput) (*models.Comment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	task, err := s.taskFor(ctx, p, taskID)
	if err != nil {
		return nil, err
	}
	previous, err := s.store.Comments().ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	c := &models.Comment{TaskID: task.ID, AuthorID: p.UserID, Body: in.Body}
	c.ApplyDefaults(s.now())
	if err := s.store.Comments().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	msg := fmt.Sprintf("New comment on task %q", task.Title)
	for _, recipient := range participants(task, previous, p.UserID) {
		s.notifications.Append(ctx, recipient, models.NotificationCommentAdded, msg, task.ID)
	}
	return c, nil
}

// participants lists the distinct users involved in a task, excluding
// author, in a stable order.
func participants(task *models.Task, comments []models.Comment, author string) []string {
	seen := map[string]bool{author: true, "": true}
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	add(task.CreatedBy)
	if task.AssigneeID != nil {
		add(*task.AssigneeID)
	}
	for _, c := range comments {
		add(c.AuthorID)
	}
	return out
}

func (s *CommentService) ListByTask(ctx context.Context, p Principal, taskID string) ([]models.Comment, error) {
	if _, err := s.taskFor(ctx, p, taskID); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByTask(ctx, taskID)
}

func (s *CommentService) Update(ctx context.Context, p Principal, id string, in CommentInput) (*models.Comment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.store.Comments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != p.UserID {
		return nil, apperrors.Forbidden("only the author can edit a comment")
	}
	now := s.now()
	if !c.Editable(now, s.window) {
		return nil, apperrors.Forbidden("the edit window for this comment has closed")
	}
	c.Body = in.Body
	c.UpdatedAt = now
	if err := s.store.Comments().Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment. Admins may always delete; authors only inside
// the edit window.
func (s *CommentService) Delete(ctx context.Context, p Principal, id string) error {
	c, err := s.store.Comments().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		if c.AuthorID != p.UserID {
			return apperrors.Forbidden("only the author or an admin can delete a comment")
		}
		if !c.Editable(s.now(), s.window) {
			return apperrors.Forbidden("the edit window for this comment has closed")
		}
	}
	return s.store.Comments().Delete(ctx, id)
}
