package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/config"
	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

// Handler exposes the services over HTTP. Every method is a fiber.Handler.
type Handler struct {
	deps *config.Dependencies
	svc  *service.Services
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps, svc: deps.Services}
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{
		"message": message,
		"success": true,
		"status":  status,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// parseBody decodes the JSON body into dto. Unknown fields are ignored.
func parseBody(c *fiber.Ctx, dto any) error {
	if err := c.BodyParser(dto); err != nil {
		logger.AuditLogger.Warn("Bad request body", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.Validation("body", "json", "request body is not valid JSON for this resource")
	}
	return nil
}

// principal returns the caller set by the auth middleware.
func principal(c *fiber.Ctx) (service.Principal, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return service.Principal{}, apperrors.Unauthenticated("authentication required")
	}
	return p, nil
}

// ErrorHandler turns errors returned by handlers into the JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		validationErr *apperrors.ValidationError
		conflictErr   *apperrors.ConflictError
		authnErr      *apperrors.AuthenticationError
		authzErr      *apperrors.AuthorizationError
		notFoundErr   *apperrors.NotFoundError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		logger.AuditLogger.Warn("Validation error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  validationErr.Fields,
			"success": false,
			"status":  fiber.StatusBadRequest,
		})
	case errors.As(err, &conflictErr):
		return failure(c, fiber.StatusConflict, conflictErr.Message)
	case errors.As(err, &authnErr):
		return failure(c, fiber.StatusUnauthorized, authnErr.Message)
	case errors.As(err, &authzErr):
		logger.SecurityLogger.Warn("Forbidden",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("reason", authzErr.Message),
		)
		return failure(c, fiber.StatusForbidden, authzErr.Message)
	case errors.As(err, &notFoundErr):
		return failure(c, fiber.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &fiberErr):
		return failure(c, fiberErr.Code, fiberErr.Message)
	}

	logger.ErrorLogger.Error("Unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return failure(c, fiber.StatusInternalServerError, "Internal server error")
}
