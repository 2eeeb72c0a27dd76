package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
)

// MemoryStore keeps every resource in maps guarded by one mutex. It applies
// the same cascade rules as the Postgres schema.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	projects      map[string]models.Project
	tasks         map[string]models.Task
	comments      map[string]models.Comment
	notifications map[string]models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         map[string]models.User{},
		projects:      map[string]models.Project{},
		tasks:         map[string]models.Task{},
		comments:      map[string]models.Comment{},
		notifications: map[string]models.Notification{},
	}
}

func (s *MemoryStore) Users() UserRepository                 { return memUsers{s} }
func (s *MemoryStore) Projects() ProjectRepository           { return memProjects{s} }
func (s *MemoryStore) Tasks() TaskRepository                 { return memTasks{s} }
func (s *MemoryStore) Comments() CommentRepository           { return memComments{s} }
func (s *MemoryStore) Notifications() NotificationRepository { return memNotifications{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close() error               { return nil }

func cloneProject(p models.Project) models.Project {
	p.Members = slices.Clone(p.Members)
	if p.Members == nil {
		p.Members = []string{}
	}
	return p
}

// --- users ---

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return apperrors.Conflict("user already exists")
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperrors.Conflict("user already exists")
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (r memUsers) List(context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return apperrors.NotFound("user", u.ID)
	}
	cur.Password = u.Password
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Role = u.Role
	cur.IsActive = u.IsActive
	cur.Avatar = u.Avatar
	cur.UpdatedAt = u.UpdatedAt
	r.s.users[cur.ID] = cur
	return nil
}

func (r memUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.NotFound("user", id)
	}
	u.LastLogin = &at
	r.s.users[u.ID] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperrors.NotFound("user", id)
	}
	delete(r.s.users, id)

	for pid, p := range r.s.projects {
		if p.OwnerID == id {
			r.s.deleteProjectLocked(pid)
			continue
		}
		p.Members = slices.DeleteFunc(p.Members, func(m string) bool { return m == id })
		r.s.projects[pid] = p
	}
	for tid, t := range r.s.tasks {
		if t.CreatedBy == id {
			t.CreatedBy = ""
		}
		if t.IsAssignedTo(id) {
			t.AssigneeID = nil
		}
		r.s.tasks[tid] = t
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	for nid, n := range r.s.notifications {
		if n.RecipientID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}

// --- projects ---

type memProjects struct{ s *MemoryStore }

func (r memProjects) Create(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; ok {
		return apperrors.Conflict("project already exists")
	}
	for _, m := range p.Members {
		if _, ok := r.s.users[m]; !ok {
			return apperrors.NotFound("referenced resource", "")
		}
	}
	r.s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r memProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project", id)
	}
	p = cloneProject(p)
	return &p, nil
}

func (r memProjects) list(keep func(models.Project) bool) []models.Project {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Project{}
	for _, p := range r.s.projects {
		if keep(p) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memProjects) List(context.Context) ([]models.Project, error) {
	return r.list(func(models.Project) bool { return true }), nil
}

func (r memProjects) ListForMember(_ context.Context, userID string) ([]models.Project, error) {
	return r.list(func(p models.Project) bool { return p.HasMember(userID) }), nil
}

func (r memProjects) Update(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.projects[p.ID]
	if !ok {
		return apperrors.NotFound("project", p.ID)
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.UpdatedAt = p.UpdatedAt
	r.s.projects[cur.ID] = cur
	return nil
}

func (r memProjects) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return apperrors.NotFound("project", id)
	}
	r.s.deleteProjectLocked(id)
	return nil
}

func (s *MemoryStore) deleteProjectLocked(id string) {
	delete(s.projects, id)
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			s.deleteTaskLocked(tid)
		}
	}
}

func (r memProjects) AddMember(_ context.Context, projectID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok {
		return apperrors.NotFound("project", projectID)
	}
	if _, ok := r.s.users[userID]; !ok {
		return apperrors.NotFound("referenced resource", "")
	}
	if !slices.Contains(p.Members, userID) {
		p.Members = append(p.Members, userID)
		r.s.projects[p.ID] = p
	}
	return nil
}

func (r memProjects) RemoveMember(_ context.Context, projectID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok || !slices.Contains(p.Members, userID) {
		return apperrors.NotFound("project member", userID)
	}
	p.Members = slices.DeleteFunc(p.Members, func(m string) bool { return m == userID })
	r.s.projects[p.ID] = p
	for tid, t := range r.s.tasks {
		if t.ProjectID == p.ID && t.IsAssignedTo(userID) {
			t.AssigneeID = nil
			t.UpdatedAt = time.Now().UTC()
			r.s.tasks[tid] = t
		}
	}
	return nil
}

// --- tasks ---

type memTasks struct{ s *MemoryStore }

func (r memTasks) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[t.ProjectID]; !ok {
		return apperrors.NotFound("referenced resource", "")
	}
	if t.AssigneeID != nil {
		if _, ok := r.s.users[*t.AssigneeID]; !ok {
			return apperrors.NotFound("referenced resource", "")
		}
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r memTasks) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, apperrors.NotFound("task", id)
	}
	return &t, nil
}

func (r memTasks) list(keep func(models.Task) bool) []models.Task {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Task{}
	for _, t := range r.s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memTasks) ListByProject(_ context.Context, projectID string, f TaskFilter) ([]models.Task, error) {
	return r.list(func(t models.Task) bool {
		return t.ProjectID == projectID &&
			(f.Status == "" || t.Status == f.Status) &&
			(f.Priority == "" || t.Priority == f.Priority) &&
			(f.AssigneeID == "" || t.IsAssignedTo(f.AssigneeID))
	}), nil
}

func (r memTasks) ListByAssignee(_ context.Context, userID string) ([]models.Task, error) {
	return r.list(func(t models.Task) bool { return t.IsAssignedTo(userID) }), nil
}

func (r memTasks) Update(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tasks[t.ID]
	if !ok {
		return apperrors.NotFound("task", t.ID)
	}
	cur.AssigneeID = t.AssigneeID
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Status = t.Status
	cur.Priority = t.Priority
	cur.DueDate = t.DueDate
	cur.UpdatedAt = t.UpdatedAt
	r.s.tasks[cur.ID] = cur
	return nil
}

func (r memTasks) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return apperrors.NotFound("task", id)
	}
	r.s.deleteTaskLocked(id)
	return nil
}

func (s *MemoryStore) deleteTaskLocked(id string) {
	delete(s.tasks, id)
	for cid, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, cid)
		}
	}
}

// --- comments ---

type memComments struct{ s *MemoryStore }

func (r memComments) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[c.TaskID]; !ok {
		return apperrors.NotFound("referenced resource", "")
	}
	r.s.comments[c.ID] = *c
	return nil
}

func (r memComments) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, apperrors.NotFound("comment", id)
	}
	return &c, nil
}

func (r memComments) ListByTask(_ context.Context, taskID string) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r memComments) Update(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.comments[c.ID]
	if !ok {
		return apperrors.NotFound("comment", c.ID)
	}
	cur.Body = c.Body
	cur.UpdatedAt = c.UpdatedAt
	r.s.comments[cur.ID] = cur
	return nil
}

func (r memComments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return apperrors.NotFound("comment", id)
	}
	delete(r.s.comments, id)
	return nil
}

// --- notifications ---

type memNotifications struct{ s *MemoryStore }

func (r memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[n.RecipientID]; !ok {
		return apperrors.NotFound("referenced resource", "")
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r memNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, apperrors.NotFound("notification", id)
	}
	return &n, nil
}

func (r memNotifications) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return apperrors.NotFound("notification", id)
	}
	n.Read = true
	r.s.notifications[n.ID] = n
	return nil
}

func (r memNotifications) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			r.s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r memNotifications) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[id]; !ok {
		return apperrors.NotFound("notification", id)
	}
	delete(r.s.notifications, id)
	return nil
}
