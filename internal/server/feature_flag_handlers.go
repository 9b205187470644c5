package server

import (
	"inkwell/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/sa/feature-flags
// @Summary Feature flags
// @Description Configured flags and their evaluation for the optional userId query parameter
// @Tags sa
// @Produce json
// @Security BasicAuth
// @Param userId query int false "Evaluate rollouts for this user"
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool,known=map[string]string}
// @Router /sa/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := uint(max(c.QueryInt("userId"), 0))

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
			"known":     featureflags.Known,
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
		"known":     featureflags.Known,
	})
}
