package domain

import (
	"context"
	"time"
)

// =============================================================================
// Notification - persisted inbox entry
// =============================================================================

type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	EntityType  string           `json:"entity_type,omitempty"`
	EntityID    string           `json:"entity_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type NotificationType string

const (
	NotificationTypeAssignment   NotificationType = "assignment"
	NotificationTypeAvailability NotificationType = "availability"
)

const EntityTypeConsultant = "consultant"

// NotificationInput is what producers hand to the notification service.
type NotificationInput struct {
	Type        NotificationType `json:"type" validate:"required,oneof=assignment availability"`
	Message     string           `json:"message" validate:"required"`
	EntityType  string           `json:"entity_type" validate:"required"`
	EntityID    string           `json:"entity_id" validate:"required"`
	RecipientID string           `json:"recipient_id" validate:"required"`
}

type NotificationFilter struct {
	RecipientID string
	Type        *NotificationType
	IsRead      *bool
	Limit       int
	Offset      int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, filter *NotificationFilter) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, recipientID, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, recipientID, id string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

// =============================================================================
// RealtimeEvent - pushed to SSE subscribers
// =============================================================================

type RealtimeEvent struct {
	Type      EventType `json:"type"`
	Seq       int64     `json:"seq"`
	UserID    string    `json:"-"` // empty for broadcasts
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type EventType string

const (
	EventConsultantCreated EventType = "consultant:created"
	EventConsultantUpdated EventType = "consultant:updated"
	EventConsultantDeleted EventType = "consultant:deleted"

	EventNotification EventType = "notification"

	EventConnected EventType = "connected"
)

func NewRealtimeEvent(t EventType, data any) *RealtimeEvent {
	return &RealtimeEvent{Type: t, Data: data, Timestamp: time.Now()}
}
