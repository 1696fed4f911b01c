package plans

import (
	"errors"

	planssvc "captable-backend/internal/application/plans"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *planssvc.Service
}

// POST /api/v1/option-plans
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req planssvc.CreatePlanInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Name == "" {
		return response.Error(c, "Name is required", fiber.StatusBadRequest, nil)
	}
	if req.TotalSharesReserved <= 0 {
		return response.Error(c, "total_shares_reserved must be positive", fiber.StatusBadRequest, nil)
	}
	plan, err := h.Service.Create(c.Context(), req)
	if err != nil {
		if errors.Is(err, planssvc.ErrShareClassNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Option plan created successfully", plan, nil)
}

// GET /api/v1/option-plans
func (h *Handlers) List(c *fiber.Ctx) error {
	plans, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Option plans fetched successfully", plans, nil)
}

// GET /api/v1/option-plans/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan ID", fiber.StatusBadRequest, nil)
	}
	plan, err := h.Service.GetWithGrants(c.Context(), id)
	if err != nil {
		if errors.Is(err, planssvc.ErrPlanNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Option plan fetched successfully", plan, nil)
}

// PUT /api/v1/option-plans/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan ID", fiber.StatusBadRequest, nil)
	}
	var req planssvc.UpdatePlanInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	plan, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, planssvc.ErrPlanNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Option plan updated successfully", plan, nil)
}

// ResizeRequest body for PATCH /api/v1/option-plans/:id/resize.
type ResizeRequest struct {
	TotalSharesReserved int64 `json:"total_shares_reserved"`
}

// Resize PATCH /api/v1/option-plans/:id/resize — shrinking below the issued
// count is rejected.
func (h *Handlers) Resize(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan ID", fiber.StatusBadRequest, nil)
	}
	var req ResizeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	plan, err := h.Service.Resize(c.Context(), id, req.TotalSharesReserved)
	if err != nil {
		switch {
		case errors.Is(err, planssvc.ErrPlanNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, planssvc.ErrInvalidResize):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Option plan resized successfully", plan, nil)
}

// DELETE /api/v1/option-plans/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan ID", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, planssvc.ErrPlanNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, planssvc.ErrPlanInUse):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Option plan deleted successfully", nil, nil)
}
