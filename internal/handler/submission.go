package handler

import (
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/middleware"
	"quiz-pipeline/internal/service"
	"quiz-pipeline/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SubmissionHandler handles quiz completion requests
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validation.Validator
}

// NewSubmissionHandler creates a new SubmissionHandler instance
func NewSubmissionHandler(service service.SubmissionService, validator *validation.Validator) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
	}
}

// SubmitQuiz godoc
// @Summary Submit a completed quiz
// @Description Validates and scores a completed quiz, records one attempt per user and quiz, then schedules streak, badge, usage, course progress and adaptive updates
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quizType path string true "Quiz type" Enums(mcq, code, openended, blanks, flashcard)
// @Param slug path string true "Quiz slug"
// @Param submission body dto.SubmitQuizRequest true "Quiz submission"
// @Success 200 {object} dto.SubmitQuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes/{quizType}/{slug}/submit [post]
func (h *SubmissionHandler) SubmitQuiz(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return domain.NewUnauthorizedError("Authentication required")
	}

	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", "request body must be a JSON object")}
	}

	sub, err := h.validator.Normalize(req, c.Params("slug"), c.Params("quizType"))
	if err != nil {
		return err
	}

	result, err := h.service.SubmitQuiz(c.UserContext(), userID, sub)
	if err != nil {
		return err
	}

	return c.JSON(dto.SubmitQuizResponse{
		Success: true,
		Result:  *result,
	})
}
