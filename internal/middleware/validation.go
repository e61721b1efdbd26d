package middleware

import (
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedQuizTypeKey     = "validated_quiz_type"
	ValidatedResourceTypeKey = "validated_resource_type"
)

// ValidateQuizTypeParam rejects unknown :quizType path values before the body is parsed.
func ValidateQuizTypeParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Params("quizType")
		if raw == "" {
			return c.Next()
		}
		quizType, ok := domain.ParseQuizType(raw)
		if !ok {
			return domain.NewUnsupportedTypeError(raw)
		}

		// Store validated value in context for handlers to use
		c.Locals(ValidatedQuizTypeKey, quizType)
		return c.Next()
	}
}

// ValidateResourceTypeParam checks :resourceType against the metered resources.
func ValidateResourceTypeParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Params("resourceType")
		resource, ok := service.ParseResourceType(raw)
		if !ok {
			return domain.ValidationErrors{
				domain.NewInvalidFormatError("resourceType", "unknown resource type: "+raw),
			}
		}

		c.Locals(ValidatedResourceTypeKey, resource)
		return c.Next()
	}
}
