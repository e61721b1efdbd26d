package middleware

import (
	"context"
	"strings"

	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
	UserTierKey         = "userTier"
)

// TokenValidator is the part of service.TokenService the middleware needs.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Success: false,
		Error:   message,
		Details: map[string]interface{}{"requiresAuth": true},
	})
}

// Protected requires a valid access token and stores the caller's id (and tier, if present) in locals.
func Protected(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return unauthorized(c, "Authentication required")
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return unauthorized(c, "Authorization scheme is not Bearer")
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return unauthorized(c, "Token is empty")
		}

		claims, err := tokens.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("Rejected bearer token", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserIDKey, claims.UserID)
		if claims.Tier != "" {
			c.Locals(UserTierKey, claims.Tier)
		}
		return c.Next()
	}
}

// CurrentUserID returns the id stored by Protected, or "".
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// CurrentUserTier returns the tier claim stored by Protected, or "".
func CurrentUserTier(c *fiber.Ctx) string {
	tier, _ := c.Locals(UserTierKey).(string)
	return tier
}
