package handler

import (
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/middleware"
	"quiz-pipeline/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UsageHandler struct {
	service service.UsageLimitService
}

func NewUsageHandler(service service.UsageLimitService) *UsageHandler {
	return &UsageHandler{service: service}
}

// GetUsage godoc
// @Summary Get quota usage
// @Description Reports whether the caller can use a metered resource in the current period
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Param resourceType path string true "Resource" Enums(quiz_attempts, flashcard_reviews, deck_creation, course_access)
// @Success 200 {object} domain.UsageReport
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /usage/{resourceType} [get]
func (h *UsageHandler) GetUsage(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return domain.NewUnauthorizedError("Authentication required")
	}

	resource, ok := c.Locals(middleware.ValidatedResourceTypeKey).(domain.ResourceType)
	if !ok {
		if resource, ok = service.ParseResourceType(c.Params("resourceType")); !ok {
			return domain.NewInvalidInputError("unknown resource type")
		}
	}

	// An empty tier makes the service fall back to the stored one.
	tier := domain.UserTier(middleware.CurrentUserTier(c))
	report, err := h.service.CanUse(c.UserContext(), userID, resource, tier)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
