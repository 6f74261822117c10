package out

import (
	"context"

	"talent_server/core/domain"
)

// RealtimePort pushes events to connected subscribers.
type RealtimePort interface {
	Subscribe(userID string) <-chan *domain.RealtimeEvent
	Unsubscribe(userID string, ch <-chan *domain.RealtimeEvent)

	// Push delivers to one user's connections.
	Push(ctx context.Context, userID string, event *domain.RealtimeEvent) error

	// Broadcast delivers to every connection.
	Broadcast(ctx context.Context, event *domain.RealtimeEvent) error

	ConnectedCount() int
	IsConnected(userID string) bool
}
