package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

// GetAllUsers lists every account. Admin only.
func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.svc.Users.List(c.UserContext(), p)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Users fetched successfully", users)
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Users.Get(c.UserContext(), p, p.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "User found", user)
}

// GetUser is available to the user itself and to admins.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Users.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "User found", user)
}

// UpdateUser applies a partial update. Fields other than firstName,
// lastName, avatar, role and isActive are ignored.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.UpdateUserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Users.Update(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	logger.AuditLogger.Info("User updated", zap.String("user_id", user.ID), zap.String("by", p.UserID))
	return respond(c, fiber.StatusOK, "User updated successfully", user)
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.svc.Users.ChangePassword(c.UserContext(), p, c.Params("id"), req); err != nil {
		return err
	}
	logger.SecurityLogger.Info("Password changed", zap.String("user_id", p.UserID))
	return respond(c, fiber.StatusOK, "Password changed successfully", nil)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.svc.Users.Delete(c.UserContext(), p, id); err != nil {
		return err
	}
	logger.AuditLogger.Info("User deleted", zap.String("user_id", id), zap.String("by", p.UserID))
	return respond(c, fiber.StatusOK, "User deleted successfully", nil)
}
