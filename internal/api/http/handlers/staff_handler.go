package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/api/dto"
	"github.com/spec-kit/nexus-console/internal/service"
)

// StaffHandler manages roster endpoints.
type StaffHandler struct {
	service *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{service: staffService}
}

// List GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	staff, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(staff)
}

// UpdateRole PUT /staff/:id/role.
func (h *StaffHandler) UpdateRole(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.StaffRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	updated, err := h.service.UpdateRole(c.UserContext(), who, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}
