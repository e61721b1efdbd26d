package handler

import (
	"quiz-pipeline/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Submission *SubmissionHandler
	Usage      *UsageHandler
	Streak     *StreakHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the API under /api; every /api route requires a bearer token.
func RegisterRoutes(app *fiber.App, h Handlers, tokens middleware.TokenValidator) {
	if h.Health != nil {
		app.Get("/healthz", h.Health.Health)
	}

	apiGroup := app.Group("/api", middleware.Protected(tokens))

	apiGroup.Post("/quizzes/:quizType/:slug/submit", middleware.ValidateQuizTypeParam(), h.Submission.SubmitQuiz)
	apiGroup.Get("/usage/:resourceType", middleware.ValidateResourceTypeParam(), h.Usage.GetUsage)

	userGroup := apiGroup.Group("/users")
	userGroup.Get("/me/streak", h.Streak.GetMyStreak)
}
