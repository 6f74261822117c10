package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"talent_server/core/domain"
	"talent_server/core/port/in"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"
	"talent_server/pkg/logger"
)

// Service persists inbox notifications and pushes them to the recipient.
type Service struct {
	repo     domain.NotificationRepository
	realtime out.RealtimePort
	validate *validator.Validate
}

func NewService(repo domain.NotificationRepository, realtime out.RealtimePort) *Service {
	return &Service{
		repo:     repo,
		realtime: realtime,
		validate: validator.New(),
	}
}

// Add validates, stores and pushes a notification. A failed push is logged
// and does not fail the call once the row is stored.
func (s *Service) Add(ctx context.Context, input *domain.NotificationInput) (*domain.Notification, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	n := &domain.Notification{
		RecipientID: input.RecipientID,
		Type:        input.Type,
		Message:     input.Message,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperr.UpstreamWriteFailure("create notification", err)
	}

	if s.realtime != nil {
		event := domain.NewRealtimeEvent(domain.EventNotification, n)
		if err := s.realtime.Push(ctx, n.RecipientID, event); err != nil {
			logger.WithContext(ctx).WithError(err).
				WithField("recipient_id", n.RecipientID).
				Warn("notification push failed")
		}
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, filter *domain.NotificationFilter) ([]*domain.Notification, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.UpstreamReadFailure("fetch notifications", err)
	}
	return items, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperr.UpstreamReadFailure("count notifications", err)
	}
	return count, nil
}

func (s *Service) MarkAsRead(ctx context.Context, recipientID, id string) error {
	return writeError(s.repo.MarkAsRead(ctx, recipientID, id), "update notification")
}

func (s *Service) MarkAllAsRead(ctx context.Context, recipientID string) error {
	return writeError(s.repo.MarkAllAsRead(ctx, recipientID), "update notifications")
}

func (s *Service) Delete(ctx context.Context, recipientID, id string) error {
	return writeError(s.repo.Delete(ctx, recipientID, id), "delete notification")
}

func writeError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, out.ErrNotFound) {
		return apperr.NotFound("Notification")
	}
	return apperr.UpstreamWriteFailure(op, err)
}

func validationError(err error) error {
	appErr := apperr.MalformedInput("invalid notification")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			appErr.WithDetail(fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return appErr.WithError(err)
}

var _ in.NotificationService = (*Service)(nil)
