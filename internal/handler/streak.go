package handler

import (
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/middleware"
	"quiz-pipeline/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StreakHandler struct {
	service service.StreakService
}

func NewStreakHandler(service service.StreakService) *StreakHandler {
	return &StreakHandler{service: service}
}

// GetMyStreak godoc
// @Summary Get the caller's daily streak
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StreakResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/me/streak [get]
func (h *StreakHandler) GetMyStreak(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return domain.NewUnauthorizedError("Authentication required")
	}

	state, err := h.service.GetStreak(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.StreakResponse{
		Streak:         state.Streak,
		LongestStreak:  state.LongestStreak,
		LastReviewDate: state.LastReviewDate,
	})
}
