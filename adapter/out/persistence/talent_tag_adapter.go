package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"talent_server/core/domain"
	"talent_server/core/port/out"
)

// TagAdapter implements out.TagRepository. The vocabulary is the union of
// the tags table and the tags consultants actually carry.
type TagAdapter struct {
	db *sqlx.DB
}

func NewTagAdapter(db *sqlx.DB) *TagAdapter {
	return &TagAdapter{db: db}
}

const listTagsQuery = `
	SELECT name, SUM(used)::int AS usage_count, MAX(created_by) AS created_by, MAX(created_at) AS created_at
	FROM (
		SELECT name, 0 AS used, created_by::text AS created_by, created_at FROM tags
		UNION ALL
		SELECT unnest(tags) AS name, 1 AS used, NULL::text AS created_by, NULL::timestamptz AS created_at FROM consultants
	) vocabulary
	GROUP BY name
	ORDER BY name`

func (a *TagAdapter) List(ctx context.Context) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	if err := a.db.SelectContext(ctx, &tags, listTagsQuery); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// Create returns out.ErrDuplicate when the name is already registered.
func (a *TagAdapter) Create(ctx context.Context, name, createdBy string) (*domain.Tag, error) {
	query := `
		INSERT INTO tags (name, created_by) VALUES ($1, NULLIF($2, '')::uuid)
		ON CONFLICT (name) DO NOTHING
		RETURNING name, created_by::text AS created_by, created_at`

	var tag domain.Tag
	if err := a.db.GetContext(ctx, &tag, query, name, createdBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrDuplicate
		}
		return nil, fmt.Errorf("insert tag %s: %w", name, err)
	}
	return &tag, nil
}

func (a *TagAdapter) Delete(ctx context.Context, name string) ([]*domain.Consultant, error) {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("delete tag %s: %w", name, err)
	}
	registered, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	var rows []consultantRow
	query := `UPDATE consultants SET tags = array_remove(tags, $1) WHERE $1 = ANY(tags) RETURNING *`
	if err := tx.SelectContext(ctx, &rows, query, name); err != nil {
		return nil, fmt.Errorf("strip tag %s: %w", name, err)
	}
	if registered == 0 && len(rows) == 0 {
		return nil, out.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tag delete: %w", err)
	}
	return toDomainList(rows)
}

var _ out.TagRepository = (*TagAdapter)(nil)
