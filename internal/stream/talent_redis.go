// Package stream carries committed side effects through a Redis stream.
package stream

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const StreamConsultantEffects = "consultant:effects"

// RedisStream wraps one consumer group on Redis streams.
type RedisStream struct {
	client *redis.Client
	group  string
	count  int64
	block  time.Duration
	log    zerolog.Logger
}

func NewRedisStream(client *redis.Client, group string, count int64, block time.Duration, log zerolog.Logger) *RedisStream {
	if count <= 0 {
		count = 10
	}
	if block <= 0 {
		block = 5 * time.Second
	}
	return &RedisStream{
		client: client,
		group:  group,
		count:  count,
		block:  block,
		log:    log.With().Str("component", "redis_stream").Str("group", group).Logger(),
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": payload},
	}).Result()
}

// Handler processes one message; a nil error acknowledges it.
type Handler func(ctx context.Context, id string, data []byte) error

// Consume reads new messages for consumer until ctx is done. Messages whose
// handler fails stay pending for Reclaim.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, handler Handler) {
	for {
		if ctx.Err() != nil {
			return
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    s.count,
			Block:    s.block,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				s.log.Warn().Err(err).Str("stream", stream).Msg("stream read failed")
				time.Sleep(time.Second)
			}
			continue
		}

		for _, st := range streams {
			s.handle(ctx, st.Stream, st.Messages, handler)
		}
	}
}

// Reclaim takes over messages idle for longer than minIdle, e.g. from a
// consumer that crashed, and runs them through handler.
func (s *RedisStream) Reclaim(ctx context.Context, stream, consumer string, minIdle time.Duration, handler Handler) error {
	start := "0-0"
	for {
		msgs, next, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   stream,
			Group:    s.group,
			Consumer: consumer,
			MinIdle:  minIdle,
			Start:    start,
			Count:    s.count,
		}).Result()
		if err != nil {
			return err
		}
		s.handle(ctx, stream, msgs, handler)
		if next == "0-0" || len(msgs) == 0 {
			return nil
		}
		start = next
	}
}

func (s *RedisStream) handle(ctx context.Context, stream string, msgs []redis.XMessage, handler Handler) {
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		if !ok {
			s.log.Warn().Str("id", msg.ID).Msg("discarding message without data")
			s.Ack(ctx, stream, msg.ID)
			continue
		}
		if err := handler(ctx, msg.ID, []byte(data)); err != nil {
			s.log.Warn().Err(err).Str("id", msg.ID).Msg("message handler failed")
			continue
		}
		if err := s.Ack(ctx, stream, msg.ID); err != nil {
			s.log.Warn().Err(err).Str("id", msg.ID).Msg("ack failed")
		}
	}
}

func (s *RedisStream) Ack(ctx context.Context, stream, id string) error {
	return s.client.XAck(ctx, stream, s.group, id).Err()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}
