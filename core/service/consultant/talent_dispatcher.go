package consultant

import (
	"context"
	"errors"

	"talent_server/core/domain"
	"talent_server/core/port/out"
	"talent_server/pkg/logger"
	"talent_server/pkg/metrics"
)

// Dispatcher executes side effects after a write has committed. It never
// reports failure to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, effects []domain.Effect)
}

// Notifier persists and pushes one inbox notification.
type Notifier interface {
	Add(ctx context.Context, input *domain.NotificationInput) (*domain.Notification, error)
}

var errNoTransport = errors.New("realtime transport not configured")

// InlineDispatcher runs effects sequentially inside the request.
type InlineDispatcher struct {
	notifier Notifier
	realtime out.RealtimePort
}

func NewInlineDispatcher(notifier Notifier, realtime out.RealtimePort) *InlineDispatcher {
	return &InlineDispatcher{notifier: notifier, realtime: realtime}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, effects []domain.Effect) {
	for _, effect := range effects {
		err := d.Execute(ctx, effect)
		metrics.ObserveEffect(effect.Label(), err)
		if err != nil {
			logger.WithContext(ctx).
				WithError(err).
				WithField("effect", effect.Label()).
				Warn("side effect failed")
		}
	}
}

// Execute runs a single effect and returns its error.
func (d *InlineDispatcher) Execute(ctx context.Context, effect domain.Effect) error {
	switch effect.Kind {
	case domain.EffectNotify:
		if d.notifier == nil || effect.Notification == nil {
			return nil
		}
		_, err := d.notifier.Add(ctx, effect.Notification)
		return err

	case domain.EffectBroadcast:
		if d.realtime == nil {
			return errNoTransport
		}
		return d.realtime.Broadcast(ctx, domain.NewRealtimeEvent(effect.Event, effect.Payload))
	}
	return nil
}

// EffectQueue stores effects for asynchronous execution.
type EffectQueue interface {
	Enqueue(ctx context.Context, effects []domain.Effect) error
}

// QueueDispatcher enqueues effects after commit and falls back to inline
// execution when the queue is unavailable.
type QueueDispatcher struct {
	queue    EffectQueue
	fallback Dispatcher
}

func NewQueueDispatcher(queue EffectQueue, fallback Dispatcher) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, fallback: fallback}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, effects []domain.Effect) {
	if len(effects) == 0 {
		return
	}
	if err := d.queue.Enqueue(ctx, effects); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("effect enqueue failed, executing inline")
		if d.fallback != nil {
			d.fallback.Dispatch(ctx, effects)
		}
	}
}
