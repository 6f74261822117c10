// Package consultant normalizes consultant input, persists records and
// derives the notifications and broadcasts each write triggers.
package consultant

import (
	"context"
	"errors"
	"time"

	"talent_server/core/domain"
	"talent_server/core/port/in"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"
	"talent_server/pkg/logger"
	"talent_server/pkg/metrics"
)

type Service struct {
	repo       out.ConsultantRepository
	storage    out.FileStoragePort
	resolver   *Resolver
	dispatcher Dispatcher
	now        func() time.Time
}

func NewService(repo out.ConsultantRepository, storage out.FileStoragePort, dispatcher Dispatcher) *Service {
	return &Service{
		repo:       repo,
		storage:    storage,
		resolver:   NewResolver(),
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) List(ctx context.Context) ([]*domain.Consultant, error) {
	consultants, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.UpstreamReadFailure("fetch consultants", err)
	}
	return consultants, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Consultant, error) {
	return s.load(ctx, id)
}

func (s *Service) Search(ctx context.Context, actor *domain.Actor, filter *domain.SearchFilter) ([]*domain.Consultant, error) {
	if filter == nil {
		filter = &domain.SearchFilter{}
	}
	if actor != nil {
		filter.ActorID = actor.ID
	}
	if filter.Now.IsZero() {
		filter.Now = s.now().UTC()
	}

	consultants, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, apperr.UpstreamReadFailure("search consultants", err)
	}
	return consultants, nil
}

func (s *Service) Create(ctx context.Context, actor *domain.Actor, raw domain.RawInput, cv *in.CVFile) (*domain.Consultant, error) {
	record := AssembleCreate(raw, actor, s.now())
	if url := s.uploadCV(ctx, "", cv); url != nil {
		record.CVFileURL = url
	}

	created, err := s.repo.Create(ctx, record)
	metrics.ObserveWrite("create", err)
	if err != nil {
		return nil, apperr.UpstreamWriteFailure("create consultant", err)
	}

	logger.WithContext(ctx).WithField("consultant_id", created.ID).Info("consultant created")
	s.dispatch(ctx, s.resolver.ResolveCreate(created, actor))
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor *domain.Actor, id string, raw domain.RawInput, cv *in.CVFile) (*domain.Consultant, error) {
	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := AssemblePatch(raw, s.now())
	patch.KeepAvailabilityStatus(before.Availability.Status)
	if url := s.uploadCV(ctx, id, cv); url != nil {
		patch.Set(domain.FieldCVFileURL, url)
	}

	after, err := s.repo.Update(ctx, id, patch)
	metrics.ObserveWrite("update", err)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("Consultant")
		}
		return nil, apperr.UpstreamWriteFailure("update consultant", err)
	}

	logger.WithContext(ctx).
		WithField("consultant_id", id).
		WithField("fields", patch.Len()).
		Info("consultant updated")
	s.dispatch(ctx, s.resolver.ResolveUpdate(before, patch, after, actor))
	return after, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*domain.Consultant, error) {
	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.repo.Delete(ctx, id)
	metrics.ObserveWrite("delete", err)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("Consultant")
		}
		return nil, apperr.UpstreamWriteFailure("delete consultant", err)
	}

	logger.WithContext(ctx).WithField("consultant_id", id).Info("consultant deleted")
	effects := s.resolver.ResolveDelete(id, before)
	s.dispatch(ctx, effects)
	return effects[0].Payload, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Consultant, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("Consultant")
		}
		return nil, apperr.UpstreamReadFailure("fetch consultant", err)
	}
	return c, nil
}

func (s *Service) dispatch(ctx context.Context, effects []domain.Effect) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, effects)
}

var _ in.ConsultantService = (*Service)(nil)
