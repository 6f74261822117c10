package consultant

import (
	"context"
	"errors"

	"talent_server/core/domain"
	"talent_server/core/port/in"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"
	"talent_server/pkg/logger"
)

// TagService manages the tag vocabulary used by the consultant tag filter.
type TagService struct {
	repo       out.TagRepository
	dispatcher Dispatcher
}

func NewTagService(repo out.TagRepository, dispatcher Dispatcher) *TagService {
	return &TagService{repo: repo, dispatcher: dispatcher}
}

func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.UpstreamReadFailure("fetch tags", err)
	}
	return tags, nil
}

func (s *TagService) Create(ctx context.Context, actor *domain.Actor, name string) (*domain.Tag, error) {
	clean, ok := domain.CleanTagName(name)
	if !ok {
		return nil, apperr.MalformedInput("Tag name is required").
			WithDetail("name: must be 1 to 50 characters")
	}

	createdBy := ""
	if actor != nil {
		createdBy = actor.ID
	}
	tag, err := s.repo.Create(ctx, clean, createdBy)
	if err != nil {
		if errors.Is(err, out.ErrDuplicate) {
			return nil, apperr.AlreadyExists("Tag")
		}
		return nil, apperr.UpstreamWriteFailure("create tag", err)
	}
	return tag, nil
}

// Delete strips the tag from every consultant and broadcasts each changed
// record.
func (s *TagService) Delete(ctx context.Context, name string) (int, error) {
	clean, ok := domain.CleanTagName(name)
	if !ok {
		return 0, apperr.NotFound("Tag")
	}

	changed, err := s.repo.Delete(ctx, clean)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return 0, apperr.NotFound("Tag")
		}
		return 0, apperr.UpstreamWriteFailure("delete tag", err)
	}

	logger.WithContext(ctx).
		WithField("tag", clean).
		WithField("consultants", len(changed)).
		Info("tag deleted")

	if s.dispatcher != nil && len(changed) > 0 {
		effects := make([]domain.Effect, 0, len(changed))
		for _, c := range changed {
			effects = append(effects, domain.BroadcastEffect(domain.EventConsultantUpdated, c))
		}
		s.dispatcher.Dispatch(ctx, effects)
	}
	return len(changed), nil
}

var _ in.TagService = (*TagService)(nil)
