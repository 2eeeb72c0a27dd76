package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/internal/apperrors"
	"taskhub/internal/service"
	"taskhub/pkg/logger"
)

// CreateTask adds a task to the project in the :id parameter.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.CreateTaskInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.svc.Tasks.Create(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	logger.AuditLogger.Info("Task created", zap.String("task_id", task.ID), zap.String("project_id", task.ProjectID))
	return respond(c, fiber.StatusCreated, "Task created successfully", task)
}

// ListProjectTasks supports the status, priority and assigneeId filters.
func (h *Handler) ListProjectTasks(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var q service.TaskListQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.Validation("query", "format", "invalid query parameters")
	}
	tasks, err := h.svc.Tasks.ListByProject(c.UserContext(), p, c.Params("id"), q)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Tasks fetched successfully", tasks)
}

// ListMyTasks returns the tasks assigned to the caller.
func (h *Handler) ListMyTasks(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.svc.Tasks.ListAssigned(c.UserContext(), p)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Tasks fetched successfully", tasks)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	task, err := h.svc.Tasks.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Task found", task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req service.UpdateTaskInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.svc.Tasks.Update(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.svc.Tasks.Delete(c.UserContext(), p, id); err != nil {
		return err
	}
	logger.AuditLogger.Info("Task deleted", zap.String("task_id", id), zap.String("by", p.UserID))
	return respond(c, fiber.StatusOK, "Task deleted successfully", nil)
}
