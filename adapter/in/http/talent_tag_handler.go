package http

import (
	"net/url"

	"talent_server/core/port/in"
	"talent_server/pkg/apperr"
	"talent_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TagHandler serves the tag vocabulary.
type TagHandler struct {
	service in.TagService
}

func NewTagHandler(service in.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func (h *TagHandler) Register(router fiber.Router) {
	tags := router.Group("/tags")
	tags.Get("/", h.List)
	tags.Post("/", h.Create)
	tags.Delete("/:tag", h.Delete)
}

func (h *TagHandler) List(c *fiber.Ctx) error {
	tags, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return response.OK(c, "Tags fetched successfully", nonNil(tags))
}

func (h *TagHandler) Create(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}
	raw, _, err := ParseRawInput(c)
	if err != nil {
		return err
	}

	name, _ := raw["name"].(string)
	if name == "" {
		name, _ = raw["tag"].(string)
	}
	tag, err := h.service.Create(c.UserContext(), actor, name)
	if err != nil {
		return err
	}
	return response.Created(c, "Tag created successfully", tag)
}

func (h *TagHandler) Delete(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("tag"))
	if err != nil {
		return apperr.InvalidParam("tag", c.Params("tag"))
	}
	affected, err := h.service.Delete(c.UserContext(), name)
	if err != nil {
		return err
	}
	return response.OK(c, "Tag deleted successfully", fiber.Map{
		"tag":                  name,
		"consultants_affected": affected,
	})
}
