package repository

import (
	"context"
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
)

func seedUser(t *testing.T, s Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "hash", FirstName: "F", LastName: "L"}
	u.ApplyDefaults(time.Now().UTC())
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestMemoryUserEmailUnique(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "a@example.com")

	dup := &models.User{Email: "a@example.com"}
	dup.ApplyDefaults(time.Now())
	err := s.Users().Create(context.Background(), dup)
	var conflict *apperrors.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "owner@example.com")

	p := &models.Project{OwnerID: owner.ID, Name: "p"}
	p.ApplyDefaults(time.Now())
	require.NoError(t, s.Projects().Create(ctx, p))

	got, err := s.Projects().GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Members = append(got.Members, "intruder")

	again, err := s.Projects().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, again.Members)
}

func TestMemoryDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "owner@example.com")
	member := seedUser(t, s, "member@example.com")

	p := &models.Project{OwnerID: owner.ID, Name: "p", Members: []string{member.ID}}
	p.ApplyDefaults(time.Now())
	require.NoError(t, s.Projects().Create(ctx, p))

	task := &models.Task{ProjectID: p.ID, CreatedBy: member.ID, AssigneeID: &member.ID, Title: "t"}
	task.ApplyDefaults(time.Now())
	require.NoError(t, s.Tasks().Create(ctx, task))

	c := &models.Comment{TaskID: task.ID, AuthorID: member.ID, Body: "hi"}
	c.ApplyDefaults(time.Now())
	require.NoError(t, s.Comments().Create(ctx, c))

	require.NoError(t, s.Users().Delete(ctx, member.ID))

	gotProject, err := s.Projects().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, gotProject.Members)

	gotTask, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gotTask.AssigneeID)
	assert.Empty(t, gotTask.CreatedBy)

	_, err = s.Comments().GetByID(ctx, c.ID)
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))

	// deleting the owner removes the project and its tasks
	require.NoError(t, s.Users().Delete(ctx, owner.ID))
	_, err = s.Projects().GetByID(ctx, p.ID)
	assert.True(t, errors.As(err, &nf))
	_, err = s.Tasks().GetByID(ctx, task.ID)
	assert.True(t, errors.As(err, &nf))
}

func TestMemoryRemoveMemberUnassigns(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "owner@example.com")
	member := seedUser(t, s, "member@example.com")

	p := &models.Project{OwnerID: owner.ID, Name: "p", Members: []string{member.ID}}
	p.ApplyDefaults(time.Now())
	require.NoError(t, s.Projects().Create(ctx, p))

	task := &models.Task{ProjectID: p.ID, CreatedBy: owner.ID, AssigneeID: &member.ID, Title: "t"}
	task.ApplyDefaults(time.Now())
	require.NoError(t, s.Tasks().Create(ctx, task))

	require.NoError(t, s.Projects().RemoveMember(ctx, p.ID, member.ID))
	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssigneeID)

	err = s.Projects().RemoveMember(ctx, p.ID, member.ID)
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestMemoryNotificationsOrderAndUnread(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := seedUser(t, s, "u@example.com")
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		n := &models.Notification{RecipientID: u.ID, Type: models.NotificationCommentAdded, Message: "m"}
		n.ApplyDefaults(base.Add(time.Duration(i) * time.Minute))
		require.NoError(t, s.Notifications().Create(ctx, n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, s.Notifications().MarkRead(ctx, ids[2]))

	all, err := s.Notifications().ListByRecipient(ctx, u.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	unread, err := s.Notifications().ListByRecipient(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	n, err := s.Notifications().MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

// borrowed returns a string sharing memory with buf, the way request
// params do before the framework reuses its buffers.
func borrowed(buf []byte) string {
	return unsafe.String(&buf[0], len(buf))
}

func scribble(buf []byte) {
	for i := range buf {
		buf[i] = 'x'
	}
}

func TestMemoryWritesKeepStoredKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "owner@example.com")
	member := seedUser(t, s, "member@example.com")

	p := &models.Project{OwnerID: owner.ID, Name: "p"}
	p.ApplyDefaults(time.Now())
	require.NoError(t, s.Projects().Create(ctx, p))

	buf := []byte(p.ID)
	require.NoError(t, s.Projects().AddMember(ctx, borrowed(buf), member.ID))
	scribble(buf)
	got, err := s.Projects().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID, member.ID}, got.Members)

	buf = []byte(p.ID)
	require.NoError(t, s.Projects().RemoveMember(ctx, borrowed(buf), member.ID))
	scribble(buf)
	got, err = s.Projects().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{owner.ID}, got.Members)

	n := &models.Notification{RecipientID: owner.ID, Type: models.NotificationTaskAssigned, Message: "m"}
	n.ApplyDefaults(time.Now())
	require.NoError(t, s.Notifications().Create(ctx, n))
	buf = []byte(n.ID)
	require.NoError(t, s.Notifications().MarkRead(ctx, borrowed(buf)))
	scribble(buf)
	gotN, err := s.Notifications().GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, gotN.Read)

	buf = []byte(owner.ID)
	require.NoError(t, s.Users().UpdateLastLogin(ctx, borrowed(buf), time.Now()))
	scribble(buf)
	_, err = s.Users().GetByID(ctx, owner.ID)
	require.NoError(t, err)
}

func TestMemoryListForMemberIncludesOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	owner := seedUser(t, s, "owner@example.com")

	p := &models.Project{OwnerID: owner.ID, Name: "p"}
	p.ApplyDefaults(time.Now())
	require.NoError(t, s.Projects().Create(ctx, p))

	list, err := s.Projects().ListForMember(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{owner.ID}, list[0].Members)
}
