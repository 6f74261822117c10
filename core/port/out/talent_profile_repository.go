package out

import (
	"context"

	"talent_server/core/domain"
)

// ProfileRepository reads user profiles owned by the identity provider.
type ProfileRepository interface {
	// GetByID returns ErrNotFound when no profile exists.
	GetByID(ctx context.Context, id string) (*domain.Actor, error)

	// ListByRole returns active profiles with the given role, ordered by name.
	ListByRole(ctx context.Context, role string) ([]*domain.Actor, error)
}
