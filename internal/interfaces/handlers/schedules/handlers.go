package schedules

import (
	"errors"

	schedsvc "captable-backend/internal/application/schedules"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *schedsvc.Service
}

// POST /api/v1/vesting-schedules
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req schedsvc.CreateScheduleInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Name == "" {
		return response.Error(c, "Name is required", fiber.StatusBadRequest, nil)
	}
	sched, err := h.Service.Create(c.Context(), req)
	if err != nil {
		if errors.Is(err, schedsvc.ErrInvalidDuration) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Vesting schedule created successfully", sched, nil)
}

// GET /api/v1/vesting-schedules
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vesting schedules fetched successfully", list, nil)
}

// GET /api/v1/vesting-schedules/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid schedule ID", fiber.StatusBadRequest, nil)
	}
	sched, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, schedsvc.ErrScheduleNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vesting schedule fetched successfully", sched, nil)
}

// GET /api/v1/vesting-schedules/:id/usage
func (h *Handlers) Usage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid schedule ID", fiber.StatusBadRequest, nil)
	}
	stats, err := h.Service.GetUsageStats(c.Context(), id)
	if err != nil {
		if errors.Is(err, schedsvc.ErrScheduleNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Schedule usage fetched successfully", stats, nil)
}

// PUT /api/v1/vesting-schedules/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid schedule ID", fiber.StatusBadRequest, nil)
	}
	var req schedsvc.UpdateScheduleInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	sched, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, schedsvc.ErrScheduleNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vesting schedule updated successfully", sched, nil)
}

// DELETE /api/v1/vesting-schedules/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid schedule ID", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, schedsvc.ErrScheduleNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, schedsvc.ErrScheduleInUse):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Vesting schedule deleted successfully", nil, nil)
}
