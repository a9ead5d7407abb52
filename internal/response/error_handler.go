package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahabattani/backend/internal/apperror"
	"go.uber.org/zap"
)

var fiberCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusUnauthorized:          "UNAUTHORIZED",
	fiber.StatusForbidden:             "FORBIDDEN",
	fiber.StatusNotFound:              "NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	fiber.StatusTooManyRequests:       "TOO_MANY_REQUESTS",
}

// ErrorHandler translates errors returned by handlers into the error envelope.
// Internal errors are logged and their cause is never sent to the client.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code, ok := fiberCodes[fiberErr.Code]
			if !ok {
				code = "INTERNAL_ERROR"
			}
			return Error(c, fiberErr.Code, code, fiberErr.Message, nil)
		}

		appErr := apperror.As(err)
		if appErr.Kind == apperror.KindInternal || appErr.Kind == apperror.KindUpstream {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("code", appErr.Code()),
				zap.Error(err),
			)
		}

		return Error(c, appErr.HTTPStatus(), appErr.Code(), appErr.Message, appErr.Details)
	}
}
