package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

// Register creates an account. An admin caller may create admin accounts.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var caller *service.Principal
	if p, ok := middleware.CurrentPrincipal(c); ok {
		caller = &p
	}

	user, err := h.svc.Users.Register(c.UserContext(), caller, req)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("User registered successfully", zap.String("user_id", user.ID))
	return respond(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	logger.AuditLogger.Info("Login success", zap.String("user_id", res.User.ID), zap.String("role", string(res.User.Role)))
	return respond(c, fiber.StatusOK, "Login success", res)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.svc.Auth.Logout(c.UserContext(), p); err != nil {
		return err
	}
	logger.AuditLogger.Info("Logout", zap.String("user_id", p.UserID))
	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}
