package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"taskhub/internal/apperrors"
)

// Postgres error codes we translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

type PostgresStore struct {
	db            *sqlx.DB
	users         *pgUserRepository
	projects      *pgProjectRepository
	tasks         *pgTaskRepository
	comments      *pgCommentRepository
	notifications *pgNotificationRepository
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db:            db,
		users:         &pgUserRepository{db: db},
		projects:      &pgProjectRepository{db: db},
		tasks:         &pgTaskRepository{db: db},
		comments:      &pgCommentRepository{db: db},
		notifications: &pgNotificationRepository{db: db},
	}
}

func (s *PostgresStore) Users() UserRepository                 { return s.users }
func (s *PostgresStore) Projects() ProjectRepository           { return s.projects }
func (s *PostgresStore) Tasks() TaskRepository                 { return s.tasks }
func (s *PostgresStore) Comments() CommentRepository           { return s.comments }
func (s *PostgresStore) Notifications() NotificationRepository { return s.notifications }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *PostgresStore) Close() error                   { return s.db.Close() }

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// mapError translates driver errors into apperrors kinds.
func mapError(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.Conflict("%s already exists", resource)
		case pqForeignKeyViolation:
			return apperrors.NotFound("referenced resource", "")
		case pqInvalidText:
			// malformed uuid
			return apperrors.NotFound(resource, id)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// expectOne turns a zero-row update or delete into NotFoundError.
func expectOne(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}
