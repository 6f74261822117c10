// Package realtime provides real-time communication adapters.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"talent_server/core/domain"
	"talent_server/core/port/out"
	"talent_server/pkg/metrics"

	"github.com/rs/zerolog"
)

const clientBuffer = 256

// SSEAdapter implements out.RealtimePort for connections held by this process.
type SSEAdapter struct {
	clients map[string]map[chan *domain.RealtimeEvent]struct{} // userID -> channels
	mu      sync.RWMutex
	log     zerolog.Logger

	messagesSent    atomic.Int64
	messagesDropped atomic.Int64
	seqCounter      atomic.Int64
}

func NewSSEAdapter(log zerolog.Logger) *SSEAdapter {
	return &SSEAdapter{
		clients: make(map[string]map[chan *domain.RealtimeEvent]struct{}),
		log:     log.With().Str("component", "sse_adapter").Logger(),
	}
}

func (a *SSEAdapter) Subscribe(userID string) <-chan *domain.RealtimeEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan *domain.RealtimeEvent, clientBuffer)
	if a.clients[userID] == nil {
		a.clients[userID] = make(map[chan *domain.RealtimeEvent]struct{})
	}
	a.clients[userID][ch] = struct{}{}
	metrics.SetRealtimeClients(len(a.clients))

	a.log.Debug().
		Str("user_id", userID).
		Int("user_connections", len(a.clients[userID])).
		Msg("client subscribed")
	return ch
}

func (a *SSEAdapter) Unsubscribe(userID string, ch <-chan *domain.RealtimeEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if channels, ok := a.clients[userID]; ok {
		for c := range channels {
			if c == ch {
				delete(channels, c)
				close(c)
				break
			}
		}
		if len(channels) == 0 {
			delete(a.clients, userID)
		}
	}
	metrics.SetRealtimeClients(len(a.clients))

	a.log.Debug().Str("user_id", userID).Msg("client unsubscribed")
}

// Push sends an event to every connection of one user. Full buffers drop
// the event instead of blocking the writer.
func (a *SSEAdapter) Push(ctx context.Context, userID string, event *domain.RealtimeEvent) error {
	event.Seq = a.seqCounter.Add(1)
	event.UserID = userID

	a.mu.RLock()
	defer a.mu.RUnlock()

	for ch := range a.clients[userID] {
		a.send(userID, ch, event)
	}
	return nil
}

// Broadcast sends an event to every connected user.
func (a *SSEAdapter) Broadcast(ctx context.Context, event *domain.RealtimeEvent) error {
	event.Seq = a.seqCounter.Add(1)

	a.mu.RLock()
	defer a.mu.RUnlock()

	for userID, channels := range a.clients {
		for ch := range channels {
			a.send(userID, ch, event)
		}
	}
	return nil
}

func (a *SSEAdapter) send(userID string, ch chan *domain.RealtimeEvent, event *domain.RealtimeEvent) {
	select {
	case ch <- event:
		a.messagesSent.Add(1)
	default:
		a.messagesDropped.Add(1)
		metrics.RealtimeDropped()
		a.log.Warn().
			Str("user_id", userID).
			Str("event_type", string(event.Type)).
			Int64("seq", event.Seq).
			Msg("dropped event due to full buffer")
	}
}

// ConnectedCount returns the number of connected users.
func (a *SSEAdapter) ConnectedCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

func (a *SSEAdapter) IsConnected(userID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients[userID]) > 0
}

func (a *SSEAdapter) Stats() SSEStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	total := 0
	for _, channels := range a.clients {
		total += len(channels)
	}
	return SSEStats{
		ConnectedUsers:   len(a.clients),
		TotalConnections: total,
		MessagesSent:     a.messagesSent.Load(),
		MessagesDropped:  a.messagesDropped.Load(),
	}
}

type SSEStats struct {
	ConnectedUsers   int   `json:"connected_users"`
	TotalConnections int   `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// =============================================================================
// SSE Hub - HTTP handler side
// =============================================================================

type SSEHub struct {
	port              out.RealtimePort
	log               zerolog.Logger
	heartbeatInterval time.Duration
}

// NewSSEHub binds HTTP clients to a realtime port. The port is usually the
// local SSEAdapter, possibly wrapped by a cross-instance fan-out.
func NewSSEHub(port out.RealtimePort, log zerolog.Logger) *SSEHub {
	return &SSEHub{
		port:              port,
		log:               log.With().Str("component", "sse_hub").Logger(),
		heartbeatInterval: 30 * time.Second,
	}
}

func (h *SSEHub) CreateClient(userID string) *SSEClient {
	return &SSEClient{
		UserID: userID,
		Events: h.port.Subscribe(userID),
		Done:   make(chan struct{}),
		hub:    h,
	}
}

func (h *SSEHub) RemoveClient(client *SSEClient) {
	h.port.Unsubscribe(client.UserID, client.Events)
}

type SSEClient struct {
	UserID string
	Events <-chan *domain.RealtimeEvent
	Done   chan struct{}
	hub    *SSEHub
	once   sync.Once
}

// Close is safe to call more than once.
func (c *SSEClient) Close() {
	c.once.Do(func() {
		close(c.Done)
		c.hub.RemoveClient(c)
	})
}

func (c *SSEClient) HeartbeatInterval() time.Duration {
	return c.hub.heartbeatInterval
}

// SerializeEvent renders the data line of an SSE frame.
func SerializeEvent(event *domain.RealtimeEvent) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":      event.Type,
		"seq":       event.Seq,
		"data":      event.Data,
		"timestamp": event.Timestamp.Format(time.RFC3339),
	})
}

var _ out.RealtimePort = (*SSEAdapter)(nil)
