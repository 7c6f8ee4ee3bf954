package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/service"
)

// MatchHandler wires HTTP → ProfileService + MatchService.
type MatchHandler struct {
	profiles *service.ProfileService
	matcher  *service.MatchService
}

// NewMatchHandler returns a handler instance.
func NewMatchHandler(profiles *service.ProfileService, matcher *service.MatchService) *MatchHandler {
	return &MatchHandler{
		profiles: profiles,
		matcher:  matcher,
	}
}

// Register mounts POST /match on the given router group.
func (h *MatchHandler) Register(r fiber.Router) {
	r.Post("/match", h.match)
}

// match handles a profile submission. Internal failures are surfaced as
// {"error": ...} with a 200 status, a soft-fail contract the frontend
// depends on; only malformed input earns a 400.
func (h *MatchHandler) match(c *fiber.Ctx) error {
	start := time.Now()

	var profile models.UserProfile
	if err := c.BodyParser(&profile); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.profiles.Validate(profile); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	embedding := h.profiles.EmbedProfile(c.UserContext(), profile)

	results, err := h.matcher.Match(c.UserContext(), embedding, service.DefaultMatchK)
	if err != nil {
		return c.JSON(fiber.Map{
			"error":                err.Error(),
			"request_process_time": time.Since(start).Seconds(),
		})
	}

	return c.JSON(fiber.Map{
		"results":              results,
		"request_process_time": time.Since(start).Seconds(),
	})
}
