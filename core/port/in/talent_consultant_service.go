package in

import (
	"context"

	"talent_server/core/domain"
)

// CVFile is an uploaded CV attached to a create or update request.
type CVFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ConsultantService interface {
	List(ctx context.Context) ([]*domain.Consultant, error)
	Get(ctx context.Context, id string) (*domain.Consultant, error)
	Search(ctx context.Context, actor *domain.Actor, filter *domain.SearchFilter) ([]*domain.Consultant, error)

	Create(ctx context.Context, actor *domain.Actor, raw domain.RawInput, cv *CVFile) (*domain.Consultant, error)
	Update(ctx context.Context, actor *domain.Actor, id string, raw domain.RawInput, cv *CVFile) (*domain.Consultant, error)

	// Delete returns the record as it was before removal.
	Delete(ctx context.Context, id string) (*domain.Consultant, error)
}

type NotificationService interface {
	Add(ctx context.Context, input *domain.NotificationInput) (*domain.Notification, error)
	List(ctx context.Context, filter *domain.NotificationFilter) ([]*domain.Notification, int, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, recipientID, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, recipientID, id string) error
}

type TagService interface {
	List(ctx context.Context) ([]*domain.Tag, error)
	Create(ctx context.Context, actor *domain.Actor, name string) (*domain.Tag, error)

	// Delete returns how many consultants lost the tag.
	Delete(ctx context.Context, name string) (int, error)
}
