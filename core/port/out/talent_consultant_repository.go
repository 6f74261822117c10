package out

import (
	"context"
	"errors"

	"talent_server/core/domain"
)

var (
	// ErrNotFound is returned by repositories when the id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// ConsultantRepository defines the outbound port for consultant persistence.
type ConsultantRepository interface {
	// Create inserts a full record and returns the stored row.
	Create(ctx context.Context, c *domain.Consultant) (*domain.Consultant, error)

	// Update applies a sparse patch and returns the stored row.
	Update(ctx context.Context, id string, patch *domain.Patch) (*domain.Consultant, error)

	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Consultant, error)

	// List returns every consultant, newest first.
	List(ctx context.Context) ([]*domain.Consultant, error)

	// Search returns consultants matching every constraint in filter, newest first.
	Search(ctx context.Context, filter *domain.SearchFilter) ([]*domain.Consultant, error)
}

// TagRepository manages the tag vocabulary shared by consultants.
type TagRepository interface {
	// List returns the registered tags and every tag in use, by name.
	List(ctx context.Context) ([]*domain.Tag, error)

	Create(ctx context.Context, name, createdBy string) (*domain.Tag, error)

	// Delete unregisters name and strips it from every consultant. It
	// returns the consultants that carried it.
	Delete(ctx context.Context, name string) ([]*domain.Consultant, error)
}
