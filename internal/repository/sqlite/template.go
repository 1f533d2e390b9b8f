package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/repository"
)

var _ repository.TemplateRepository = (*DB)(nil)

// ListTemplates returns every template whose featured flag equals featured.
//
// There is no pagination: the catalogue is small and seeded by migrations.
// ORDER BY rowid keeps insertion order stable across calls.
func (db *DB) ListTemplates(ctx context.Context, featured bool) ([]model.Template, error) {
	query, args, err := sq.
		Select("id", "title", "description", "category", "image_url", "featured").
		From("templates").
		Where(sq.Eq{"featured": featured}).
		OrderBy("rowid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building template query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing templates: %w", err)
	}
	defer rows.Close()

	templates := make([]model.Template, 0)
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Category, &t.ImageURL, &t.Featured,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning template row: %w", err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating templates: %w", err)
	}

	return templates, nil
}
