package sqlite

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/project-studio/internal/apperror"
	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/repository"
)

var _ repository.ProjectRepository = (*DB)(nil)

// CreateProject inserts a project and sets its ID from the autoincrement key.
//
// REFERENTIAL INTEGRITY:
// template_id and user_id are foreign keys and foreign_keys is on for every
// pooled connection, so an unknown template or owner makes the INSERT fail
// with SQLITE_CONSTRAINT_FOREIGNKEY. Nothing orphaned is ever written.
func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	project.CreatedAt = time.Now().UTC()
	if project.Status == "" {
		project.Status = model.StatusInProgress
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (template_id, user_id, title, slug, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		project.TemplateID,
		project.UserID,
		project.Title,
		project.Slug,
		string(project.Status),
		project.CreatedAt,
	)
	if err != nil {
		switch classify(err) {
		case constraintForeignKey:
			return apperror.BadRequest("invalid data: template or owner does not exist", err)
		case constraintCheck:
			return apperror.BadRequest("invalid data: unknown project status", err)
		}
		return fmt.Errorf("sqlite: inserting project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading project id: %w", err)
	}
	project.ID = id

	return nil
}

// ListProjectsByOwner returns the projects owned by userID, oldest first.
func (db *DB) ListProjectsByOwner(ctx context.Context, userID string) ([]model.Project, error) {
	query, args, err := sq.
		Select("id", "template_id", "user_id", "title", "slug", "status", "created_at").
		From("projects").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building project query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects for %s: %w", userID, err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var (
			p      model.Project
			status string
		)
		if err := rows.Scan(
			&p.ID, &p.TemplateID, &p.UserID, &p.Title, &p.Slug, &status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		p.Status = model.ProjectStatus(status)
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}
