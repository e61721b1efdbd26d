package middleware

import (
	"errors"
	"net/http"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {success:false, error, details?}.
// Causes and stacks of processing errors are only exposed outside production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger := logger.Get()

		// Handle validation errors
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			logger.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Strings("fields", validationErrs.Fields()),
			)
			return c.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{
				Success: false,
				Error:   "Invalid submission",
				Details: map[string]interface{}{
					"missingFields": validationErrs.Fields(),
					"errors":        []domain.ValidationError(validationErrs),
				},
			})
		}

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("path", c.Path()),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Cause),
			}
			if statusCode >= http.StatusInternalServerError {
				logger.Error("Domain error occurred", fields...)
			} else {
				logger.Info("Domain error occurred", fields...)
			}

			response := dto.ErrorResponse{
				Success: false,
				Error:   domainErr.Message,
			}
			if len(domainErr.Context) > 0 {
				response.Details = make(map[string]interface{}, len(domainErr.Context)+2)
				for k, v := range domainErr.Context {
					response.Details[k] = v
				}
			}
			if domainErr.Code == domain.CodeProcessing && !production {
				if response.Details == nil {
					response.Details = make(map[string]interface{}, 2)
				}
				response.Details["message"] = domainErr.Error()
				response.Details["stack"] = domainErr.Stack
			}

			return c.Status(statusCode).JSON(response)
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			logger.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Success: false,
				Error:   fiberErr.Message,
			})
		}

		// Handle unknown errors
		logger.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false,
			Error:   "Internal server error",
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound, domain.CodeQuizNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation, domain.CodeMissingField,
		domain.CodeInvalidFormat, domain.CodeUnsupportedType:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeTransientDB:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
