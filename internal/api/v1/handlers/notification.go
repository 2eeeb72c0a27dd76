package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// ListNotifications returns the caller's notifications, newest first.
// ?unread=true limits the list to unread ones.
func (h *Handler) ListNotifications(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.svc.Notifications.List(c.UserContext(), p, c.QueryBool("unread", false))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Notifications fetched successfully", list)
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	n, err := h.svc.Notifications.MarkRead(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Notification marked as read", n)
}

func (h *Handler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	count, err := h.svc.Notifications.MarkAllRead(c.UserContext(), p)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Notifications marked as read", fiber.Map{"updated": count})
}

func (h *Handler) DeleteNotification(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.svc.Notifications.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Notification deleted successfully", nil)
}
