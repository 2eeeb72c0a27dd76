package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

const userColumns = `id, email, password, first_name, last_name, role, is_active, avatar, last_login, created_at, updated_at`

type pgUserRepository struct {
	db *sqlx.DB
}

func (r *pgUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Email, u.Password, u.FirstName, u.LastName, u.Role, u.IsActive,
		u.Avatar, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)
	return mapError(err, "user", u.ID)
}

func (r *pgUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return &u, nil
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, mapError(err, "user", email)
	}
	return &u, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, mapError(err, "user", "")
	}
	return users, nil
}

func (r *pgUserRepository) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password = $1, first_name = $2, last_name = $3, role = $4,
		     is_active = $5, avatar = $6, updated_at = $7
		 WHERE id = $8`,
		u.Password, u.FirstName, u.LastName, u.Role, u.IsActive, u.Avatar, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return mapError(err, "user", u.ID)
	}
	return expectOne(res, "user", u.ID)
}

func (r *pgUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return mapError(err, "user", id)
	}
	return expectOne(res, "user", id)
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "user", id)
	}
	return expectOne(res, "user", id)
}
