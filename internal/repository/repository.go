// Package repository holds the persistence layer: one repository per
// resource behind a Store, with a Postgres implementation and an in-memory
// one used for tests and STORE=memory.
//
// Lookups of missing ids return *apperrors.NotFoundError and uniqueness
// violations return *apperrors.ConflictError.
package repository

import (
	"context"
	"time"

	"taskhub/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Update overwrites the mutable fields of u.
	Update(ctx context.Context, u *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListForMember(ctx context.Context, userID string) ([]models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID string) error
	// RemoveMember drops the membership and unassigns the user's tasks in
	// the project.
	RemoveMember(ctx context.Context, projectID, userID string) error
}

// TaskFilter narrows ListByProject. Empty fields match everything.
type TaskFilter struct {
	Status     models.TaskStatus
	Priority   models.Priority
	AssigneeID string
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	ListByProject(ctx context.Context, projectID string, f TaskFilter) ([]models.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByTask returns comments oldest first.
	ListByTask(ctx context.Context, taskID string) ([]models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListByRecipient returns notifications newest first.
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories of one backend.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Comments() CommentRepository
	Notifications() NotificationRepository
	Ping(ctx context.Context) error
	Close() error
}
