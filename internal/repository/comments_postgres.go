package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

const commentColumns = `id, task_id, author_id, body, created_at, updated_at`

type pgCommentRepository struct {
	db *sqlx.DB
}

func (r *pgCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.TaskID, c.AuthorID, c.Body, c.CreatedAt, c.UpdatedAt,
	)
	return mapError(err, "comment", c.ID)
}

func (r *pgCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.GetContext(ctx, &c, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "comment", id)
	}
	return &c, nil
}

func (r *pgCommentRepository) ListByTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.SelectContext(ctx, &comments,
		`SELECT `+commentColumns+` FROM comments WHERE task_id = $1 ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, mapError(err, "comment", "")
	}
	return comments, nil
}

func (r *pgCommentRepository) Update(ctx context.Context, c *models.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET body = $1, updated_at = $2 WHERE id = $3`, c.Body, c.UpdatedAt, c.ID)
	if err != nil {
		return mapError(err, "comment", c.ID)
	}
	return expectOne(res, "comment", c.ID)
}

func (r *pgCommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "comment", id)
	}
	return expectOne(res, "comment", id)
}
