package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationCommentAdded NotificationType = "comment_added"
)

// User is an account record. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        string     `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Password  string     `json:"-" db:"password"`
	FirstName string     `json:"firstName" db:"first_name"`
	LastName  string     `json:"lastName" db:"last_name"`
	Role      Role       `json:"role" db:"role"`
	IsActive  bool       `json:"isActive" db:"is_active"`
	Avatar    *string    `json:"avatar" db:"avatar"`
	LastLogin *time.Time `json:"lastLogin" db:"last_login"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// ApplyDefaults fills the id, role and timestamps of a new user.
func (u *User) ApplyDefaults(now time.Time) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type Project struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"ownerId" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Members     []string  `json:"members" db:"-"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ApplyDefaults fills the id and timestamps and makes sure the owner is in
// the member set.
func (p *Project) ApplyDefaults(now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if !slices.Contains(p.Members, p.OwnerID) {
		p.Members = append([]string{p.OwnerID}, p.Members...)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
}

// HasMember reports whether userID belongs to the project. The owner always
// does.
func (p *Project) HasMember(userID string) bool {
	return userID == p.OwnerID || slices.Contains(p.Members, userID)
}

type Task struct {
	ID          string     `json:"id" db:"id"`
	ProjectID   string     `json:"projectId" db:"project_id"`
	CreatedBy   string     `json:"createdBy" db:"created_by"`
	AssigneeID  *string    `json:"assigneeId" db:"assignee_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

func (t *Task) ApplyDefaults(now time.Time) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.CreatedAt = now
	t.UpdatedAt = now
}

// IsAssignedTo reports whether userID is the task's assignee.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

type Comment struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"taskId" db:"task_id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (c *Comment) ApplyDefaults(now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Editable reports whether the comment is still inside its edit window.
func (c *Comment) Editable(now time.Time, window time.Duration) bool {
	return now.Sub(c.CreatedAt) <= window
}

type Notification struct {
	ID          string           `json:"id" db:"id"`
	RecipientID string           `json:"recipientId" db:"recipient_id"`
	Type        NotificationType `json:"type" db:"type"`
	Message     string           `json:"message" db:"message"`
	ResourceID  string           `json:"resourceId" db:"resource_id"`
	Read        bool             `json:"read" db:"read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}

func (n *Notification) ApplyDefaults(now time.Time) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Read = false
	n.CreatedAt = now
}
