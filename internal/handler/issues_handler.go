package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openmatchhq/open-match/server/internal/service"
)

// IssuesHandler serves the full formatted catalog listing.
type IssuesHandler struct {
	matcher *service.MatchService
}

// NewIssuesHandler returns a handler instance.
func NewIssuesHandler(matcher *service.MatchService) *IssuesHandler {
	return &IssuesHandler{matcher: matcher}
}

// Register mounts GET /issues on the given router group.
func (h *IssuesHandler) Register(r fiber.Router) {
	r.Get("/issues", h.list)
}

// list handles GET /issues. Like the match endpoint it soft-fails: errors
// come back as {"error": ...} with a 200 status.
func (h *IssuesHandler) list(c *fiber.Ctx) error {
	start := time.Now()

	issues, err := h.matcher.ListCatalog(c.UserContext())
	if err != nil {
		return c.JSON(fiber.Map{
			"error":                err.Error(),
			"request_process_time": time.Since(start).Seconds(),
		})
	}

	return c.JSON(fiber.Map{
		"results":              issues,
		"request_process_time": time.Since(start).Seconds(),
	})
}
