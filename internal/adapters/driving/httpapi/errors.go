package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidTurnReference),
		errors.Is(err, domain.ErrUnknownModel):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrStaleResponse):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders handler errors as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Method(), c.Path(), err)
	} else {
		logger.Debug("%s %s: %d %v", c.Method(), c.Path(), code, err)
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
