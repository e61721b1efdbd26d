package middleware_test

import (
	"net/http/httptest"
	"testing"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuizTypeParam(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(true)})
	app.Post("/api/quizzes/:quizType/:slug/submit", middleware.ValidateQuizTypeParam(), func(c *fiber.Ctx) error {
		assert.Equal(t, domain.QuizTypeBlanks, c.Locals(middleware.ValidatedQuizTypeKey))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/quizzes/blanks/go/submit", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/api/quizzes/essay/go/submit", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestValidateResourceTypeParam(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(true)})
	app.Get("/api/usage/:resourceType", middleware.ValidateResourceTypeParam(), func(c *fiber.Ctx) error {
		assert.Equal(t, domain.ResourceDeckCreation, c.Locals(middleware.ValidatedResourceTypeKey))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/usage/deck_creation", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/usage/gpu_minutes", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRequestLogger_PreservesStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(true)})
	app.Use(middleware.RequestLogger())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) })
	app.Get("/missing", func(c *fiber.Ctx) error { return domain.NewQuizNotFoundError("x") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
