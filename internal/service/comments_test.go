package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
)

func TestCommentNotifiesEachOtherParticipantOnce(t *testing.T) {
	f := newFixture(t)
	o, owner := f.user(t, models.RoleUser)
	a, assignee := f.user(t, models.RoleUser)
	c, commenter := f.user(t, models.RoleUser)
	p := f.project(t, owner, a.ID, c.ID)

	task, err := f.svc.Tasks.Create(f.ctx, owner, p.ID, CreateTaskInput{Title: "Ship", AssigneeID: strPtr(a.ID)})
	require.NoError(t, err)
	_, err = f.svc.Comments.Add(f.ctx, commenter, task.ID, CommentInput{Body: "first"})
	require.NoError(t, err)
	_, err = f.svc.Comments.Add(f.ctx, commenter, task.ID, CommentInput{Body: "second"})
	require.NoError(t, err)

	countComments := func(userID string) int {
		n := 0
		for _, note := range f.notificationsFor(t, userID) {
			if note.Type == models.NotificationCommentAdded {
				n++
			}
		}
		return n
	}
	before := map[string]int{o.ID: countComments(o.ID), a.ID: countComments(a.ID), c.ID: countComments(c.ID)}

	_, err = f.svc.Comments.Add(f.ctx, assignee, task.ID, CommentInput{Body: "on it"})
	require.NoError(t, err)

	assert.Equal(t, before[o.ID]+1, countComments(o.ID), "creator")
	assert.Equal(t, before[c.ID]+1, countComments(c.ID), "previous commenter")
	assert.Equal(t, before[a.ID], countComments(a.ID), "author")
}

func TestParticipantsDeduplicates(t *testing.T) {
	task := &models.Task{CreatedBy: "u1", AssigneeID: strPtr("u1")}
	comments := []models.Comment{{AuthorID: "u2"}, {AuthorID: "u1"}, {AuthorID: "u2"}, {AuthorID: "u3"}}

	assert.Equal(t, []string{"u1", "u2"}, participants(task, comments, "u3"))
	assert.Equal(t, []string{"u2", "u3"}, participants(task, comments, "u1"))
	assert.Empty(t, participants(&models.Task{}, nil, "u1"))
}

func TestCommentRequiresProjectAccess(t *testing.T) {
	f := newFixture(t)
	_, owner := f.user(t, models.RoleUser)
	_, outsider := f.user(t, models.RoleUser)
	p := f.project(t, owner)
	task, err := f.svc.Tasks.Create(f.ctx, owner, p.ID, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	_, err = f.svc.Comments.Add(f.ctx, outsider, task.ID, CommentInput{Body: "hi"})
	assert.True(t, isKind[*apperrors.AuthorizationError](err))

	_, err = f.svc.Comments.Add(f.ctx, owner, task.ID, CommentInput{})
	assert.True(t, isKind[*apperrors.ValidationError](err))

	_, err = f.svc.Comments.Add(f.ctx, owner, "missing", CommentInput{Body: "hi"})
	assert.True(t, isKind[*apperrors.NotFoundError](err))
}

func TestCommentEditWindow(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.svc.Comments.now = func() time.Time { return now }

	_, owner := f.user(t, models.RoleUser)
	m, member := f.user(t, models.RoleUser)
	_, admin := f.user(t, models.RoleAdmin)
	p := f.project(t, owner, m.ID)
	task, err := f.svc.Tasks.Create(f.ctx, owner, p.ID, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	c, err := f.svc.Comments.Add(f.ctx, member, task.ID, CommentInput{Body: "draft"})
	require.NoError(t, err)

	_, err = f.svc.Comments.Update(f.ctx, owner, c.ID, CommentInput{Body: "not mine"})
	assert.True(t, isKind[*apperrors.AuthorizationError](err))

	now = now.Add(10 * time.Minute)
	edited, err := f.svc.Comments.Update(f.ctx, member, c.ID, CommentInput{Body: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Body)

	now = now.Add(10 * time.Minute)
	_, err = f.svc.Comments.Update(f.ctx, member, c.ID, CommentInput{Body: "too late"})
	assert.True(t, isKind[*apperrors.AuthorizationError](err))
	err = f.svc.Comments.Delete(f.ctx, member, c.ID)
	assert.True(t, isKind[*apperrors.AuthorizationError](err))

	require.NoError(t, f.svc.Comments.Delete(f.ctx, admin, c.ID))

	list, err := f.svc.Comments.ListByTask(f.ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListCommentsOldestFirst(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.svc.Comments.now = func() time.Time { return now }

	_, owner := f.user(t, models.RoleUser)
	p := f.project(t, owner)
	task, err := f.svc.Tasks.Create(f.ctx, owner, p.ID, CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	for _, body := range []string{"one", "two", "three"} {
		_, err := f.svc.Comments.Add(f.ctx, owner, task.ID, CommentInput{Body: body})
		require.NoError(t, err)
		now = now.Add(time.Second)
	}

	list, err := f.svc.Comments.ListByTask(f.ctx, owner, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Body)
	assert.Equal(t, "three", list[2].Body)
}
