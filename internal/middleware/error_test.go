package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveError(t *testing.T, production bool, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(production)})
	app.Get("/fail", func(c *fiber.Ctx) error { return err })

	resp, testErr := app.Test(httptest.NewRequest("GET", "/fail", nil), -1)
	require.NoError(t, testErr)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler_Validation(t *testing.T) {
	status, body := serveError(t, true, domain.ValidationErrors{
		domain.NewMissingFieldError("quizId"),
		domain.NewMissingFieldError("score"),
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Equal(t, []interface{}{"quizId", "score"}, body.Details["missingFields"])
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"quiz not found", domain.NewQuizNotFoundError("go-basics"), fiber.StatusNotFound, "Quiz not found"},
		{"unsupported type", domain.NewUnsupportedTypeError("essay"), fiber.StatusBadRequest, "Unsupported quiz type: essay"},
		{"unauthorized", domain.NewUnauthorizedError("Authentication required"), fiber.StatusUnauthorized, "Authentication required"},
		{"internal", domain.NewInternalError("Failed to get streak", errors.New("db")), fiber.StatusInternalServerError, "Failed to get streak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serveError(t, true, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, body.Error)
		})
	}
}

func TestErrorHandler_ProcessingErrorDetails(t *testing.T) {
	err := domain.NewProcessingError("Failed to process quiz submission", errors.New("ORA-00060"))

	status, body := serveError(t, false, err)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body.Details["message"], "ORA-00060")
	assert.NotEmpty(t, body.Details["stack"])

	_, body = serveError(t, true, err)
	assert.Equal(t, "Failed to process quiz submission", body.Error)
	assert.Nil(t, body.Details)
}

func TestErrorHandler_UnknownAndFiberErrors(t *testing.T) {
	status, body := serveError(t, true, errors.New("boom"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body.Error)

	status, body = serveError(t, true, fiber.NewError(fiber.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, fiber.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method Not Allowed", body.Error)
}
