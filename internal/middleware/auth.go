package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

// PrincipalKey is the locals key holding the authenticated service.Principal.
const PrincipalKey = "principal"

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (service.Principal, error)
}

func bearerToken(c *fiber.Ctx) (string, bool, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true, apperrors.Unauthenticated("invalid token format")
	}
	return parts[1], true, nil
}

func authenticate(c *fiber.Ctx, auth Authenticator, token string) error {
	p, err := auth.Authenticate(c.UserContext(), token)
	if err != nil {
		logger.SecurityLogger.Warn("Rejected token",
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Error(err),
		)
		return err
	}
	c.Locals(PrincipalKey, p)
	return c.Next()
}

// UseToken requires a valid bearer token and stores the principal in the
// request locals.
func UseToken(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, err := bearerToken(c)
		if err != nil {
			return err
		}
		if !present {
			return apperrors.Unauthenticated("no token provided")
		}
		return authenticate(c, auth, token)
	}
}

// OptionalToken authenticates the caller when a token is sent and lets
// anonymous requests through.
func OptionalToken(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present, err := bearerToken(c)
		if err != nil {
			return err
		}
		if !present {
			return c.Next()
		}
		return authenticate(c, auth, token)
	}
}

// QueryToken authenticates websocket upgrades, which carry the token in the
// "token" query parameter.
func QueryToken(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return apperrors.Unauthenticated("no token provided")
		}
		return authenticate(c, auth, token)
	}
}

// CurrentPrincipal returns the authenticated caller, if any.
func CurrentPrincipal(c *fiber.Ctx) (service.Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(service.Principal)
	return p, ok
}
