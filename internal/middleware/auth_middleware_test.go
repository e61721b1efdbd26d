package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Manual mock for middleware.TokenValidator
type ManualMockTokenValidator struct {
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *ManualMockTokenValidator) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	return nil, errors.New("ValidateJWTFunc not set on mock")
}

func TestProtected(t *testing.T) {
	validator := &ManualMockTokenValidator{
		ValidateJWTFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
			if tokenString == "valid_access_token" {
				return &dto.AuthClaims{UserID: "user123", TokenType: "access", Tier: "pro"}, nil
			}
			return nil, errors.New("token is expired")
		},
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID string
	}{
		{name: "No Auth Header", authHeader: "", expectedStatus: fiber.StatusUnauthorized},
		{name: "Wrong Scheme", authHeader: "Basic abc", expectedStatus: fiber.StatusUnauthorized},
		{name: "Empty Token", authHeader: "Bearer ", expectedStatus: fiber.StatusUnauthorized},
		{name: "Invalid Token", authHeader: "Bearer expired", expectedStatus: fiber.StatusUnauthorized},
		{name: "Valid Access Token", authHeader: "Bearer valid_access_token", expectedStatus: fiber.StatusOK, expectedUserID: "user123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/me", middleware.Protected(validator), func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"userID": middleware.CurrentUserID(c),
					"tier":   middleware.CurrentUserTier(c),
				})
			})

			req := httptest.NewRequest("GET", "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set(middleware.AuthorizationHeader, tt.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			if tt.expectedStatus == fiber.StatusOK {
				var got map[string]string
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, tt.expectedUserID, got["userID"])
				assert.Equal(t, "pro", got["tier"])
				return
			}

			var errResp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.False(t, errResp.Success)
			assert.NotEmpty(t, errResp.Error)
			assert.Equal(t, true, errResp.Details["requiresAuth"])
		})
	}
}
