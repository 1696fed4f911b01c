package reports

import (
	"time"

	reportsvc "captable-backend/internal/application/reports"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *reportsvc.Service
}

// CapTable GET /api/v1/reports/cap-table
func (h *Handlers) CapTable(c *fiber.Ctx) error {
	report, err := h.Service.CapTable(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Cap table fetched successfully", report, nil)
}

// CapTableCSV GET /api/v1/reports/cap-table/export — CSV download.
func (h *Handlers) CapTableCSV(c *fiber.Ctx) error {
	data, err := h.Service.CapTableCSV(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="cap-table.csv"`)
	return c.Send(data)
}

// OptionGrants GET /api/v1/reports/option-grants
func (h *Handlers) OptionGrants(c *fiber.Ctx) error {
	report, err := h.Service.OptionGrants(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Option grants fetched successfully", report, nil)
}

// UpcomingVesting GET /api/v1/reports/vesting?as_of=YYYY-MM-DD
func (h *Handlers) UpcomingVesting(c *fiber.Ctx) error {
	asOf := time.Now().UTC()
	if s := c.Query("as_of"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return response.Error(c, "Invalid as_of date, expected YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		asOf = parsed
	}
	report, err := h.Service.UpcomingVesting(c.Context(), asOf)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upcoming vesting fetched successfully", report, nil)
}
