package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/internal/service"
)

func (h *Handler) AddComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.svc.Comments.Add(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Comment added successfully", comment)
}

func (h *Handler) ListComments(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	comments, err := h.svc.Comments.ListByTask(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Comments fetched successfully", comments)
}

func (h *Handler) UpdateComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.svc.Comments.Update(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Comment updated successfully", comment)
}

func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.svc.Comments.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Comment deleted successfully", nil)
}
