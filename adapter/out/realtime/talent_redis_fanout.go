package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"talent_server/core/domain"
	"talent_server/core/port/out"
)

// envelope is the Pub/Sub message shared between API instances.
type envelope struct {
	UserID    string           `json:"user_id,omitempty"`
	Type      domain.EventType `json:"type"`
	Data      json.RawMessage  `json:"data"`
	Timestamp time.Time        `json:"timestamp"`
}

// RedisFanout publishes events on a Redis channel so that every API
// instance delivers them to its own SSE connections.
type RedisFanout struct {
	client  *redis.Client
	channel string
	local   *SSEAdapter
	log     zerolog.Logger
}

func NewRedisFanout(client *redis.Client, channel string, local *SSEAdapter, log zerolog.Logger) *RedisFanout {
	return &RedisFanout{
		client:  client,
		channel: channel,
		local:   local,
		log:     log.With().Str("component", "redis_fanout").Logger(),
	}
}

func (f *RedisFanout) Subscribe(userID string) <-chan *domain.RealtimeEvent {
	return f.local.Subscribe(userID)
}

func (f *RedisFanout) Unsubscribe(userID string, ch <-chan *domain.RealtimeEvent) {
	f.local.Unsubscribe(userID, ch)
}

func (f *RedisFanout) ConnectedCount() int {
	return f.local.ConnectedCount()
}

func (f *RedisFanout) IsConnected(userID string) bool {
	return f.local.IsConnected(userID)
}

func (f *RedisFanout) Stats() SSEStats {
	return f.local.Stats()
}

func (f *RedisFanout) Push(ctx context.Context, userID string, event *domain.RealtimeEvent) error {
	if err := f.publish(ctx, userID, event); err != nil {
		f.local.Push(ctx, userID, event)
		return err
	}
	return nil
}

func (f *RedisFanout) Broadcast(ctx context.Context, event *domain.RealtimeEvent) error {
	if err := f.publish(ctx, "", event); err != nil {
		f.local.Broadcast(ctx, event)
		return err
	}
	return nil
}

// publish failures are reported after local delivery so this instance's
// subscribers still receive the event.
func (f *RedisFanout) publish(ctx context.Context, userID string, event *domain.RealtimeEvent) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	msg, err := json.Marshal(envelope{
		UserID:    userID,
		Type:      event.Type,
		Data:      data,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", f.channel, err)
	}
	return nil
}

// Run relays channel messages to local connections until ctx is done.
func (f *RedisFanout) Run(ctx context.Context) {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	f.log.Info().Str("channel", f.channel).Msg("realtime fan-out started")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			f.log.Info().Msg("realtime fan-out stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f.deliver(ctx, []byte(msg.Payload))
		}
	}
}

func (f *RedisFanout) deliver(ctx context.Context, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		f.log.Warn().Err(err).Msg("discarding malformed fan-out message")
		return
	}

	event := &domain.RealtimeEvent{
		Type:      env.Type,
		Data:      env.Data,
		Timestamp: env.Timestamp,
	}
	if env.UserID != "" {
		f.local.Push(ctx, env.UserID, event)
		return
	}
	f.local.Broadcast(ctx, event)
}

var _ out.RealtimePort = (*RedisFanout)(nil)
