package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/api/dto"
	"github.com/spec-kit/nexus-console/internal/service"
)

// TasksHandler manages task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// MyTasks GET /tasks/my.
func (h *TasksHandler) MyTasks(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.MyTasks(c.UserContext(), who)
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

// UpdateStatus PUT /tasks/:id/status.
func (h *TasksHandler) UpdateStatus(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.TaskStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	task, err := h.service.UpdateStatus(c.UserContext(), who, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(task)
}
