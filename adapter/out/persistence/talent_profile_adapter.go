package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talent_server/core/domain"
	"talent_server/core/port/out"
)

const profileColumns = `id::text AS id, COALESCE(name, '') AS name, COALESCE(email, '') AS email,
	COALESCE(role, '') AS role, COALESCE(active, false) AS active, username, phone, client_id::text AS client_id`

// ProfileAdapter reads the profiles table through the pgx pool.
type ProfileAdapter struct {
	pool *pgxpool.Pool
}

func NewProfileAdapter(pool *pgxpool.Pool) *ProfileAdapter {
	return &ProfileAdapter{pool: pool}
}

func (a *ProfileAdapter) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	rows, err := a.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	actor, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.Actor])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	actor.Normalize()
	return actor, nil
}

func (a *ProfileAdapter) ListByRole(ctx context.Context, role string) ([]*domain.Actor, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(role) = lower($1) AND active = true ORDER BY name`,
		role)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	actors, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.Actor])
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	for _, actor := range actors {
		actor.Normalize()
	}
	return actors, nil
}

var _ out.ProfileRepository = (*ProfileAdapter)(nil)
