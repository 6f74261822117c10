package domain

// EffectKind distinguishes inbox notifications from realtime broadcasts.
type EffectKind string

const (
	EffectNotify    EffectKind = "notify"
	EffectBroadcast EffectKind = "broadcast"
)

// Effect is one side effect derived from a committed write. It is plain
// data so it can be executed inline or queued for a worker.
type Effect struct {
	Kind         EffectKind         `json:"kind"`
	Notification *NotificationInput `json:"notification,omitempty"`
	Event        EventType          `json:"event,omitempty"`
	Payload      *Consultant        `json:"payload,omitempty"`
}

func NotifyEffect(n *NotificationInput) Effect {
	return Effect{Kind: EffectNotify, Notification: n}
}

func BroadcastEffect(event EventType, payload *Consultant) Effect {
	return Effect{Kind: EffectBroadcast, Event: event, Payload: payload}
}

// Label is used for logs and metrics.
func (e Effect) Label() string {
	if e.Kind == EffectNotify && e.Notification != nil {
		return string(e.Notification.Type)
	}
	if e.Kind == EffectBroadcast {
		return string(e.Event)
	}
	return string(e.Kind)
}
