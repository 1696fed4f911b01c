package transactions

import (
	equitysvc "captable-backend/internal/application/equity"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *equitysvc.Service
}

// GET /api/v1/transactions?shareholder_id=&share_class_id=&type=
func (h *Handlers) List(c *fiber.Ctx) error {
	var filter equitysvc.TransactionFilter
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
	if t := c.Query("type"); t != "" {
		filter.TransactionType = &t
	}
	list, err := h.Service.ListTransactions(c.Context(), filter)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Transactions fetched successfully", list, nil)
}
