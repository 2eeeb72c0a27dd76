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

type TaskService struct {
	store         repository.Store
	validate      *validation.Validator
	notifications *NotificationService
	now           func() time.Time
}

type CreateTaskInput struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description string            `json:"description" validate:"max=10000"`
	Status      models.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
	Priority    models.Priority   `json:"priority" validate:"omitempty,priority"`
	DueDate     *time.Time        `json:"dueDate"`
	AssigneeID  *string           `json:"assigneeId"`
}

// UpdateTaskInput holds a partial task update. An empty AssigneeID clears
// the assignment. ClearDueDate removes the due date and wins over DueDate.
type UpdateTaskInput struct {
	Title        *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string            `json:"description" validate:"omitempty,max=10000"`
	Status       *models.TaskStatus `json:"status" validate:"omitempty,taskstatus"`
	Priority     *models.Priority   `json:"priority" validate:"omitempty,priority"`
	DueDate      *time.Time         `json:"dueDate"`
	ClearDueDate bool               `json:"clearDueDate"`
	AssigneeID   *string            `json:"assigneeId"`
}

type TaskListQuery struct {
	Status     models.TaskStatus `json:"status" query:"status" validate:"omitempty,taskstatus"`
	Priority   models.Priority   `json:"priority" query:"priority" validate:"omitempty,priority"`
	AssigneeID string            `json:"assigneeId" query:"assigneeId" validate:"omitempty,uuid"`
}

func (s *TaskService) projectFor(ctx context.Context, p Principal, projectID string) (*models.Project, error) {
	proj, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !canAccessProject(p, proj) {
		return nil, apperrors.Forbidden("not a member of this project")
	}
	return proj, nil
}

// load fetches a task together with its project after checking the caller
// can see it.
func (s *TaskService) load(ctx context.Context, p Principal, id string) (*models.Task, *models.Project, error) {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	proj, err := s.projectFor(ctx, p, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return task, proj, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, proj *models.Project, userID string) error {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return err
	}
	if !proj.HasMember(userID) {
		return apperrors.Validation("assigneeId", "member", "assignee must be a member of the project")
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, p Principal, projectID string, in CreateTaskInput) (*models.Task, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	proj, err := s.projectFor(ctx, p, projectID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   proj.ID,
		CreatedBy:   p.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}
	if in.AssigneeID != nil && *in.AssigneeID != "" {
		if err := s.checkAssignee(ctx, proj, *in.AssigneeID); err != nil {
			return nil, err
		}
		assignee := *in.AssigneeID
		task.AssigneeID = &assignee
	}
	task.ApplyDefaults(s.now())

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if task.AssigneeID != nil && *task.AssigneeID != p.UserID {
		s.notifyAssigned(ctx, task)
	}
	return task, nil
}

func (s *TaskService) notifyAssigned(ctx context.Context, task *models.Task) {
	s.notifications.Append(ctx, *task.AssigneeID, models.NotificationTaskAssigned,
		fmt.Sprintf("You have been assigned to task %q", task.Title), task.ID)
}

func (s *TaskService) ListByProject(ctx context.Context, p Principal, projectID string, q TaskListQuery) ([]models.Task, error) {
	if err := s.validate.Struct(q); err != nil {
		return nil, err
	}
	if _, err := s.projectFor(ctx, p, projectID); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByProject(ctx, projectID, repository.TaskFilter{
		Status:     q.Status,
		Priority:   q.Priority,
		AssigneeID: q.AssigneeID,
	})
}

// ListAssigned returns the tasks assigned to the caller across projects.
func (s *TaskService) ListAssigned(ctx context.Context, p Principal) ([]models.Task, error) {
	return s.store.Tasks().ListByAssignee(ctx, p.UserID)
}

func (s *TaskService) Get(ctx context.Context, p Principal, id string) (*models.Task, error) {
	task, _, err := s.load(ctx, p, id)
	return task, err
}

func (s *TaskService) Update(ctx context.Context, p Principal, id string, in UpdateTaskInput) (*models.Task, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	task, proj, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != task.Status && !canChangeTaskStatus(p, proj, task) {
		return nil, apperrors.Forbidden("only the assignee, the task creator, the project owner or an admin can change the status")
	}

	reassigned := false
	if in.AssigneeID != nil {
		current := ""
		if task.AssigneeID != nil {
			current = *task.AssigneeID
		}
		reassigned = *in.AssigneeID != current
	}
	if reassigned {
		if !canReassignTask(p, proj, task) {
			return nil, apperrors.Forbidden("only the task creator, the project owner or an admin can reassign")
		}
		if *in.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			if err := s.checkAssignee(ctx, proj, *in.AssigneeID); err != nil {
				return nil, err
			}
			assignee := *in.AssigneeID
			task.AssigneeID = &assignee
		}
	}

	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.ClearDueDate {
		task.DueDate = nil
	} else if in.DueDate != nil {
		due := *in.DueDate
		task.DueDate = &due
	}
	task.UpdatedAt = s.now()

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if reassigned && task.AssigneeID != nil && *task.AssigneeID != p.UserID {
		s.notifyAssigned(ctx, task)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, p Principal, id string) error {
	task, proj, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}
	if !canReassignTask(p, proj, task) {
		return apperrors.Forbidden("only the task creator, the project owner or an admin can delete a task")
	}
	return s.store.Tasks().Delete(ctx, id)
}
