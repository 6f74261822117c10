package stream

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talent_server/core/domain"
)

// EffectBatch is the stream payload: the effects of one committed write.
type EffectBatch struct {
	ID        string          `json:"id"`
	Effects   []domain.Effect `json:"effects"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Producer implements consultant.EffectQueue on a Redis stream.
type Producer struct {
	stream *RedisStream
	name   string
}

func NewProducer(stream *RedisStream, name string) *Producer {
	if name == "" {
		name = StreamConsultantEffects
	}
	return &Producer{stream: stream, name: name}
}

func (p *Producer) Enqueue(ctx context.Context, effects []domain.Effect) error {
	batch := &EffectBatch{
		ID:        uuid.New().String(),
		Effects:   effects,
		CreatedAt: time.Now().UTC(),
	}
	_, err := p.stream.Publish(ctx, p.name, batch)
	return err
}
