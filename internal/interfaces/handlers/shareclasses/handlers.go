package shareclasses

import (
	"errors"

	scsvc "captable-backend/internal/application/shareclasses"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *scsvc.Service
}

// POST /api/v1/share-classes
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req scsvc.ShareClassInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Name == "" {
		return response.Error(c, "Name is required", fiber.StatusBadRequest, nil)
	}
	sc, err := h.Service.Create(c.Context(), req)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Share class created successfully", sc, nil)
}

// GET /api/v1/share-classes
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.ListWithTotals(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Share classes fetched successfully", list, nil)
}

// GET /api/v1/share-classes/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid share class ID", fiber.StatusBadRequest, nil)
	}
	sc, err := h.Service.GetWithTotals(c.Context(), id)
	if err != nil {
		if errors.Is(err, scsvc.ErrShareClassNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Share class fetched successfully", sc, nil)
}

// PUT /api/v1/share-classes/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid share class ID", fiber.StatusBadRequest, nil)
	}
	var req scsvc.ShareClassInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	sc, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, scsvc.ErrShareClassNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Share class updated successfully", sc, nil)
}

// DELETE /api/v1/share-classes/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid share class ID", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, scsvc.ErrShareClassNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, scsvc.ErrShareClassInUse):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Share class deleted successfully", nil, nil)
}
