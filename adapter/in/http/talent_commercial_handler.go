package http

import (
	"talent_server/core/domain"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"
	"talent_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CommercialHandler lists the active profiles consultants can be assigned to.
type CommercialHandler struct {
	profiles out.ProfileRepository
}

func NewCommercialHandler(profiles out.ProfileRepository) *CommercialHandler {
	return &CommercialHandler{profiles: profiles}
}

func (h *CommercialHandler) Register(router fiber.Router) {
	router.Get("/commercials", h.List)
}

func (h *CommercialHandler) List(c *fiber.Ctx) error {
	commercials, err := h.profiles.ListByRole(c.UserContext(), domain.RoleCommercial)
	if err != nil {
		return apperr.UpstreamReadFailure("fetch commercials", err)
	}
	return response.OK(c, "Commercials fetched successfully", nonNil(commercials))
}
