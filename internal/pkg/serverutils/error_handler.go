package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper translates a domain error into an HTTP status. ok=false means "not mine".
type StatusMapper func(err error) (status int, ok bool)

// ErrorHandlerMiddleware turns errors returned by handlers into ErrorResponse JSON.
func ErrorHandlerMiddleware(mappers ...StatusMapper) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(BaseResponse[map[string]string]{
				Success: false,
				Code:    fiber.StatusBadRequest,
				Message: "Validation failed",
				Data:    validationErr.Fields,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		for _, mapper := range mappers {
			if status, ok := mapper(err); ok {
				return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
			}
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
