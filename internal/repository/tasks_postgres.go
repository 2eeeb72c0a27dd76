package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

const taskColumns = `id, project_id, COALESCE(created_by::text, '') AS created_by, assignee_id,
	title, description, status, priority, due_date, created_at, updated_at`

type pgTaskRepository struct {
	db *sqlx.DB
}

func (r *pgTaskRepository) Create(ctx context.Context, t *models.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, created_by, assignee_id, title, description,
		                    status, priority, due_date, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.ProjectID, t.CreatedBy, t.AssigneeID, t.Title, t.Description,
		t.Status, t.Priority, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	return mapError(err, "task", t.ID)
}

func (r *pgTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "task", id)
	}
	return &t, nil
}

func (r *pgTaskRepository) ListByProject(ctx context.Context, projectID string, f TaskFilter) ([]models.Task, error) {
	where := []string{"project_id = $1"}
	args := []any{projectID}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.AssigneeID != "" {
		args = append(args, f.AssigneeID)
		where = append(where, fmt.Sprintf("assignee_id = $%d", len(args)))
	}

	tasks := []models.Task{}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, mapError(err, "task", "")
	}
	return tasks, nil
}

func (r *pgTaskRepository) ListByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE assignee_id = $1 ORDER BY due_date NULLS LAST, created_at`, userID)
	if err != nil {
		return nil, mapError(err, "task", "")
	}
	return tasks, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, t *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET assignee_id = $1, title = $2, description = $3, status = $4,
		     priority = $5, due_date = $6, updated_at = $7
		 WHERE id = $8`,
		t.AssigneeID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return mapError(err, "task", t.ID)
	}
	return expectOne(res, "task", t.ID)
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "task", id)
	}
	return expectOne(res, "task", id)
}
