package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"talent_server/core/domain"
	"talent_server/pkg/apperr"
	"talent_server/pkg/logger"
)

const auditStreamMaxLen = 100000

// AuditEvent records one mutating API request.
type AuditEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ActorID    string    `json:"actor_id,omitempty"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
	RequestID  string    `json:"request_id"`
	Success    bool      `json:"success"`
}

// AuditLog appends events to a capped Redis stream.
type AuditLog struct {
	redis  *redis.Client
	stream string
}

func NewAuditLog(client *redis.Client, stream string) *AuditLog {
	if stream == "" {
		stream = "audit:consultants"
	}
	return &AuditLog{redis: client, stream: stream}
}

func (a *AuditLog) Record(ctx context.Context, event *AuditEvent) error {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return a.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: a.stream,
		Values: map[string]any{"event": string(data)},
		MaxLen: auditStreamMaxLen,
		Approx: true,
	}).Err()
}

// auditVerbs names the mutating methods worth an audit entry.
var auditVerbs = map[string]string{
	fiber.MethodPost:   "create",
	fiber.MethodPatch:  "update",
	fiber.MethodPut:    "update",
	fiber.MethodDelete: "delete",
}

// auditAction is "<resource>_<verb>", the resource being the first path
// segment after the API prefix in singular form.
func auditAction(path, verb string) string {
	resource := strings.TrimPrefix(path, "/v1/api/")
	if i := strings.IndexByte(resource, '/'); i >= 0 {
		resource = resource[:i]
	}
	resource = strings.TrimSuffix(resource, "s")
	if resource == "" {
		resource = "api"
	}
	return resource + "_" + verb
}

// Middleware audits mutating requests of the group it is mounted on. A nil
// AuditLog disables it.
func (a *AuditLog) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		verb, ok := auditVerbs[c.Method()]
		if a == nil || a.redis == nil || !ok {
			return c.Next()
		}
		action := auditAction(c.Path(), verb)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.GetHTTPStatus(err)
		}
		event := &AuditEvent{
			Action:     action,
			ResourceID: c.Params("id"),
			Method:     c.Method(),
			Path:       c.Path(),
			IP:         c.IP(),
			StatusCode: status,
			DurationMS: time.Since(start).Milliseconds(),
			RequestID:  c.GetRespHeader(fiber.HeaderXRequestID),
			Success:    status < 400,
		}
		if actor, ok := c.Locals(ActorKey).(*domain.Actor); ok && actor != nil {
			event.ActorID = actor.ID
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if logErr := a.Record(ctx, event); logErr != nil {
				logger.WithError(logErr).Warn("failed to record audit event")
			}
		}()
		return err
	}
}
