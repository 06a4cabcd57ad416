package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"permit-review/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"
	detail := ""

	var (
		fiberErr *fiber.Error
		valErr   *domain.ValidationError
		nfErr    *domain.NotFoundError
		authErr  *domain.AuthorizationError
		sizeErr  *domain.SizeLimitError
		depErr   *domain.DependencyError
	)

	switch {
	case errors.As(err, &valErr):
		code = fiber.StatusBadRequest
		errorCode = "VALIDATION_ERROR"
		message = valErr.Error()
	case errors.As(err, &nfErr):
		code = fiber.StatusNotFound
		errorCode = "NOT_FOUND"
		message = nfErr.Error()
	case errors.As(err, &authErr):
		code = fiber.StatusUnauthorized
		errorCode = "UNAUTHORIZED"
		if authErr.Authenticated {
			code = fiber.StatusForbidden
			errorCode = "FORBIDDEN"
		}
		message = authErr.Error()
	case errors.As(err, &sizeErr):
		code = fiber.StatusRequestEntityTooLarge
		errorCode = "FILE_TOO_LARGE"
		message = sizeErr.Error()
	case errors.As(err, &depErr):
		code = fiber.StatusInternalServerError
		errorCode = "DEPENDENCY_ERROR"
		message = "A backing service failed, please retry"
		detail = depErr.Detail()
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message

		switch code {
		case fiber.StatusBadRequest:
			errorCode = "BAD_REQUEST"
		case fiber.StatusUnauthorized:
			errorCode = "UNAUTHORIZED"
		case fiber.StatusForbidden:
			errorCode = "FORBIDDEN"
		case fiber.StatusNotFound:
			errorCode = "NOT_FOUND"
		case fiber.StatusConflict:
			errorCode = "CONFLICT"
		case fiber.StatusRequestEntityTooLarge:
			errorCode = "FILE_TOO_LARGE"
		case fiber.StatusUnprocessableEntity:
			errorCode = "VALIDATION_ERROR"
		}
	}

	traceID := uuid.New().String()[:8]

	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"trace_id", traceID,
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)
	}

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode,
		Message: message,
		Detail:  detail,
		TraceID: traceID,
	})
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}
