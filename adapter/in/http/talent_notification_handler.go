package http

import (
	"talent_server/core/domain"
	"talent_server/core/port/in"
	"talent_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const maxNotificationPage = 100

// NotificationHandler serves the authenticated actor's inbox.
type NotificationHandler struct {
	service in.NotificationService
}

func NewNotificationHandler(service in.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Register mounts the routes. idGuards run before every /:id handler.
func (h *NotificationHandler) Register(router fiber.Router, idGuards ...fiber.Handler) {
	notifications := router.Group("/notifications")
	withID := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, idGuards...), handler)
	}

	notifications.Get("/", h.List)
	notifications.Get("/unread-count", h.UnreadCount)
	notifications.Patch("/read-all", h.MarkAllAsRead)
	notifications.Patch("/:id/read", withID(h.MarkAsRead)...)
	notifications.Delete("/:id", withID(h.Delete)...)
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > maxNotificationPage {
		limit = maxNotificationPage
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	filter := &domain.NotificationFilter{
		RecipientID: actor.ID,
		Limit:       limit,
		Offset:      offset,
	}
	if c.Query("unread_only") == "true" {
		unread := false
		filter.IsRead = &unread
	}
	if t := c.Query("type"); t != "" {
		nt := domain.NotificationType(t)
		filter.Type = &nt
	}

	items, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return response.OK(c, "Notifications fetched successfully", fiber.Map{
		"notifications": nonNil(items),
		"total":         total,
		"limit":         limit,
		"offset":        offset,
	})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}

	count, err := h.service.UnreadCount(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return response.OK(c, "Unread count fetched successfully", fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAsRead(c.UserContext(), actor.ID, c.Params("id")); err != nil {
		return err
	}
	return response.OK(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllAsRead(c.UserContext(), actor.ID); err != nil {
		return err
	}
	return response.OK(c, "All notifications marked as read", nil)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), actor.ID, c.Params("id")); err != nil {
		return err
	}
	return response.OK(c, "Notification deleted successfully", nil)
}
