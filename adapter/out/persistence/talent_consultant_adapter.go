// Package persistence implements the PostgreSQL repositories.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"talent_server/core/domain"
	"talent_server/core/port/out"
)

// ConsultantAdapter implements out.ConsultantRepository using PostgreSQL.
type ConsultantAdapter struct {
	db *sqlx.DB
}

func NewConsultantAdapter(db *sqlx.DB) *ConsultantAdapter {
	return &ConsultantAdapter{db: db}
}

// Create inserts c; id and created_at come from column defaults.
func (a *ConsultantAdapter) Create(ctx context.Context, c *domain.Consultant) (*domain.Consultant, error) {
	fields, values := writeColumns(c)

	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		v, err := columnValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
		columns[i] = string(f)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = v
	}

	query := fmt.Sprintf(
		"INSERT INTO consultants (%s) VALUES (%s) RETURNING *",
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	var row consultantRow
	if err := a.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("insert consultant: %w", err)
	}
	return row.toDomain()
}

// Update writes only the patched columns and returns the stored row.
func (a *ConsultantAdapter) Update(ctx context.Context, id string, patch *domain.Patch) (*domain.Consultant, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return a.GetByID(ctx, id)
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	argIdx := 1
	for _, f := range fields {
		raw, _ := patch.Get(f)
		v, err := columnValue(raw)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f, argIdx))
		args = append(args, v)
		argIdx++
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE consultants SET %s WHERE id = $%d RETURNING *",
		strings.Join(sets, ", "),
		argIdx,
	)

	var row consultantRow
	if err := a.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("update consultant %s: %w", id, err)
	}
	return row.toDomain()
}

func (a *ConsultantAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.db.ExecContext(ctx, `DELETE FROM consultants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete consultant %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return out.ErrNotFound
	}
	return nil
}

func (a *ConsultantAdapter) GetByID(ctx context.Context, id string) (*domain.Consultant, error) {
	var row consultantRow
	if err := a.db.GetContext(ctx, &row, `SELECT * FROM consultants WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("get consultant %s: %w", id, err)
	}
	return row.toDomain()
}

func (a *ConsultantAdapter) List(ctx context.Context) ([]*domain.Consultant, error) {
	var rows []consultantRow
	if err := a.db.SelectContext(ctx, &rows, `SELECT * FROM consultants ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list consultants: %w", err)
	}
	return toDomainList(rows)
}

func (a *ConsultantAdapter) Search(ctx context.Context, filter *domain.SearchFilter) ([]*domain.Consultant, error) {
	query, args := buildSearchQuery(filter)

	var rows []consultantRow
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search consultants: %w", err)
	}
	return toDomainList(rows)
}

var _ out.ConsultantRepository = (*ConsultantAdapter)(nil)
