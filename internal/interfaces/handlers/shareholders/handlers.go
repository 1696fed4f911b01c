package shareholders

import (
	"errors"

	shsvc "captable-backend/internal/application/shareholders"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *shsvc.Service
}

// POST /api/v1/shareholders
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req shsvc.ShareholderInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Name == "" {
		return response.Error(c, "Name is required", fiber.StatusBadRequest, nil)
	}
	sh, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Shareholder created successfully", sh, nil)
}

// GET /api/v1/shareholders?type=&search=
func (h *Handlers) List(c *fiber.Ctx) error {
	var filter shsvc.ListFilter
	if t := c.Query("type"); t != "" {
		filter.Type = &t
	}
	if q := c.Query("search"); q != "" {
		filter.Search = &q
	}
	list, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Shareholders fetched successfully", list, nil)
}

// GET /api/v1/shareholders/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	summaries, err := h.Service.EquitySummaries(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Shareholder equity summary fetched successfully", summaries, nil)
}

// GET /api/v1/shareholders/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid shareholder ID", fiber.StatusBadRequest, nil)
	}
	sh, err := h.Service.GetWithEquity(c.Context(), id)
	if err != nil {
		if errors.Is(err, shsvc.ErrShareholderNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Shareholder fetched successfully", sh, nil)
}

// PUT /api/v1/shareholders/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid shareholder ID", fiber.StatusBadRequest, nil)
	}
	var req shsvc.ShareholderInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	sh, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, shsvc.ErrShareholderNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Shareholder updated successfully", sh, nil)
}

// DELETE /api/v1/shareholders/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid shareholder ID", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, shsvc.ErrShareholderNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, shsvc.ErrShareholderInUse):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Shareholder deleted successfully", nil, nil)
}
