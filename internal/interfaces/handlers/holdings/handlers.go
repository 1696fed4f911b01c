package holdings

import (
	"errors"

	equitysvc "captable-backend/internal/application/equity"
	"captable-backend/internal/application/reports"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers manages equity holdings. Mutations invalidate the cached cap
// table so the next report reflects them.
type Handlers struct {
	Service *equitysvc.Service
	Cache   *reports.Cache
}

// POST /api/v1/holdings
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req equitysvc.CreateHoldingInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.CreateHolding(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, equitysvc.ErrShareholderNotFound),
			errors.Is(err, equitysvc.ErrShareClassNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, equitysvc.ErrNegativeHoldingQuantity):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	h.Cache.InvalidateCapTable(c.Context())
	return response.SuccessCreated(c, "Holding created successfully", holding, nil)
}

// GET /api/v1/holdings?shareholder_id=&share_class_id=
func (h *Handlers) List(c *fiber.Ctx) error {
	var filter equitysvc.HoldingFilter
	if s := c.Query("shareholder_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid shareholder_id", fiber.StatusBadRequest, nil)
		}
		filter.ShareholderID = &id
	}
	if s := c.Query("share_class_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid share_class_id", fiber.StatusBadRequest, nil)
		}
		filter.ShareClassID = &id
	}
	list, err := h.Service.ListHoldings(c.Context(), filter)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holdings fetched successfully", list, nil)
}

// GET /api/v1/holdings/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.GetHolding(c.Context(), id)
	if err != nil {
		if errors.Is(err, equitysvc.ErrHoldingNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holding fetched successfully", holding, nil)
}

// PUT /api/v1/holdings/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID", fiber.StatusBadRequest, nil)
	}
	var req equitysvc.UpdateHoldingInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	holding, err := h.Service.UpdateHolding(c.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, equitysvc.ErrHoldingNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, equitysvc.ErrNegativeHoldingQuantity):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	h.Cache.InvalidateCapTable(c.Context())
	return response.Success(c, "Holding updated successfully", holding, nil)
}

// DELETE /api/v1/holdings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid holding ID", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteHolding(c.Context(), id); err != nil {
		if errors.Is(err, equitysvc.ErrHoldingNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	h.Cache.InvalidateCapTable(c.Context())
	return response.Success(c, "Holding deleted successfully", nil, nil)
}
