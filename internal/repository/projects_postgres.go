package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"taskhub/internal/models"
)

const projectColumns = `p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at`

type pgProjectRepository struct {
	db *sqlx.DB
}

func (r *pgProjectRepository) Create(ctx context.Context, p *models.Project) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, owner_id, name, description, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "project", p.ID)
		}
		for _, userID := range p.Members {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO project_members (project_id, user_id, added_at) VALUES ($1, $2, $3)
				 ON CONFLICT DO NOTHING`,
				p.ID, userID, p.CreatedAt,
			)
			if err != nil {
				return mapError(err, "project member", userID)
			}
		}
		return nil
	})
}

func (r *pgProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := r.db.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	if err != nil {
		return nil, mapError(err, "project", id)
	}
	projects := []models.Project{p}
	if err := r.loadMembers(ctx, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (r *pgProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.SelectContext(ctx, &projects, `SELECT `+projectColumns+` FROM projects p ORDER BY p.created_at`)
	if err != nil {
		return nil, mapError(err, "project", "")
	}
	return projects, r.loadMembers(ctx, projects)
}

func (r *pgProjectRepository) ListForMember(ctx context.Context, userID string) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects p
		 WHERE p.owner_id = $1
		    OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1)
		 ORDER BY p.created_at`, userID)
	if err != nil {
		return nil, mapError(err, "project", "")
	}
	return projects, r.loadMembers(ctx, projects)
}

// loadMembers fills Members for every project with a single query.
func (r *pgProjectRepository) loadMembers(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, len(projects))
	index := make(map[string]int, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
		index[p.ID] = i
		projects[i].Members = []string{}
	}

	var rows []struct {
		ProjectID string `db:"project_id"`
		UserID    string `db:"user_id"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT project_id, user_id FROM project_members
		 WHERE project_id = ANY($1::uuid[])
		 ORDER BY added_at, user_id`, pq.Array(ids))
	if err != nil {
		return mapError(err, "project member", "")
	}
	for _, row := range rows {
		i := index[row.ProjectID]
		projects[i].Members = append(projects[i].Members, row.UserID)
	}
	return nil
}

func (r *pgProjectRepository) Update(ctx context.Context, p *models.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		p.Name, p.Description, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return mapError(err, "project", p.ID)
	}
	return expectOne(res, "project", p.ID)
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "project", id)
	}
	return expectOne(res, "project", id)
}

func (r *pgProjectRepository) AddMember(ctx context.Context, projectID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, projectID, userID)
	return mapError(err, "project member", userID)
}

func (r *pgProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
		if err != nil {
			return mapError(err, "project member", userID)
		}
		if err := expectOne(res, "project member", userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET assignee_id = NULL, updated_at = NOW()
			 WHERE project_id = $1 AND assignee_id = $2`, projectID, userID)
		return mapError(err, "task", "")
	})
}
