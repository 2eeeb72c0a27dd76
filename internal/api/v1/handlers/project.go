package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

func (h *Handler) CreateProject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.CreateProjectInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	proj, err := h.svc.Projects.Create(c.UserContext(), p, req)
	if err != nil {
		return err
	}
	logger.AuditLogger.Info("Project created", zap.String("project_id", proj.ID), zap.String("owner_id", p.UserID))
	return respond(c, fiber.StatusCreated, "Project created successfully", proj)
}

func (h *Handler) ListProjects(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	projects, err := h.svc.Projects.List(c.UserContext(), p)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Projects fetched successfully", projects)
}

func (h *Handler) GetProject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	proj, err := h.svc.Projects.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Project found", proj)
}

func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.UpdateProjectInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	proj, err := h.svc.Projects.Update(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Project updated successfully", proj)
}

func (h *Handler) DeleteProject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.svc.Projects.Delete(c.UserContext(), p, id); err != nil {
		return err
	}
	logger.AuditLogger.Info("Project deleted", zap.String("project_id", id), zap.String("by", p.UserID))
	return respond(c, fiber.StatusOK, "Project deleted successfully", nil)
}

func (h *Handler) AddMember(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.AddMemberInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	proj, err := h.svc.Projects.AddMember(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Member added successfully", proj)
}

func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	proj, err := h.svc.Projects.RemoveMember(c.UserContext(), p, c.Params("id"), c.Params("userId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Member removed successfully", proj)
}
