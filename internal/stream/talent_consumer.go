package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"talent_server/core/domain"
	"talent_server/pkg/metrics"
)

// Executor runs a single effect.
type Executor interface {
	Execute(ctx context.Context, effect domain.Effect) error
}

const (
	reclaimIdle = time.Minute
	maxAttempts = 3
)

type publisher interface {
	Publish(ctx context.Context, stream string, data any) (string, error)
}

// Consumer executes queued effect batches.
type Consumer struct {
	stream   *RedisStream
	requeue  publisher
	executor Executor
	name     string
	source   string
	log      zerolog.Logger
}

func NewConsumer(stream *RedisStream, executor Executor, source, name string, log zerolog.Logger) *Consumer {
	if source == "" {
		source = StreamConsultantEffects
	}
	return &Consumer{
		stream:   stream,
		requeue:  stream,
		executor: executor,
		name:     name,
		source:   source,
		log:      log.With().Str("component", "effect_consumer").Str("consumer", name).Logger(),
	}
}

// Start creates the group, retries stale messages and then consumes in the
// background until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.stream.CreateGroup(ctx, c.source); err != nil {
		return fmt.Errorf("create group for %s: %w", c.source, err)
	}
	if err := c.stream.Reclaim(ctx, c.source, c.name, reclaimIdle, c.Handle); err != nil {
		c.log.Warn().Err(err).Msg("reclaim of pending effects failed")
	}

	go c.stream.Consume(ctx, c.source, c.name, c.Handle)
	c.log.Info().Str("stream", c.source).Msg("effect consumer started")
	return nil
}

// Handle runs every effect of a batch. Failed notifications are
// republished as a new batch, up to maxAttempts; broadcasts are best effort.
// An error leaves the message pending.
func (c *Consumer) Handle(ctx context.Context, id string, data []byte) error {
	var batch EffectBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		c.log.Error().Err(err).Str("id", id).Msg("discarding malformed effect batch")
		return nil
	}

	var retry []domain.Effect
	for _, effect := range batch.Effects {
		err := c.executor.Execute(ctx, effect)
		metrics.ObserveEffect(effect.Label(), err)
		if err == nil {
			continue
		}
		c.log.Warn().Err(err).Str("id", id).Str("effect", effect.Label()).Msg("effect failed")
		if effect.Kind == domain.EffectNotify {
			retry = append(retry, effect)
		}
	}
	if len(retry) == 0 {
		return nil
	}

	if batch.Attempt+1 >= maxAttempts {
		c.log.Error().Str("id", id).Int("dropped", len(retry)).Msg("giving up on notifications")
		return nil
	}
	next := &EffectBatch{
		ID:        batch.ID,
		Effects:   retry,
		Attempt:   batch.Attempt + 1,
		CreatedAt: batch.CreatedAt,
	}
	if _, err := c.requeue.Publish(ctx, c.source, next); err != nil {
		return fmt.Errorf("requeue batch %s: %w", batch.ID, err)
	}
	return nil
}
