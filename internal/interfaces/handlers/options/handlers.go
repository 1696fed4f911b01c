package options

import (
	"errors"
	"time"

	optsvc "captable-backend/internal/application/options"
	planssvc "captable-backend/internal/application/plans"
	"captable-backend/internal/application/reports"
	"captable-backend/internal/middleware"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers manages the option grant lifecycle. Exercises move shares into
// equity, so those invalidate the cached cap table.
type Handlers struct {
	Service *optsvc.Service
	Cache   *reports.Cache
}

// POST /api/v1/options
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req optsvc.CreateOptionInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if user, ok := middleware.GetAuthUser(c); ok {
		req.ActorEmail = &user.Email
	}
	opt, err := h.Service.Create(c.Context(), req)
	if err != nil {
		var insufficient *planssvc.InsufficientSharesError
		switch {
		case errors.As(err, &insufficient):
			return response.Error(c, err.Error(), fiber.StatusConflict, fiber.Map{
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
		case errors.Is(err, optsvc.ErrShareholderNotFound),
			errors.Is(err, optsvc.ErrScheduleNotFound),
			errors.Is(err, planssvc.ErrPlanNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, optsvc.ErrInvalidQuantity):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Option granted successfully", opt, nil)
}

// GET /api/v1/options?status=&shareholder_id=&plan_id=
func (h *Handlers) List(c *fiber.Ctx) error {
	var filter optsvc.ListFilter
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}
	if s := c.Query("shareholder_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid shareholder_id", fiber.StatusBadRequest, nil)
		}
		filter.ShareholderID = &id
	}
	if s := c.Query("plan_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return response.Error(c, "Invalid plan_id", fiber.StatusBadRequest, nil)
		}
		filter.OptionPlanID = &id
	}
	list, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Options fetched successfully", list, nil)
}

// GET /api/v1/options/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid option ID", fiber.StatusBadRequest, nil)
	}
	opt, err := h.Service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, optsvc.ErrOptionNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Option fetched successfully", opt, nil)
}

// GET /api/v1/options/:id/vesting?as_of=YYYY-MM-DD
func (h *Handlers) Vesting(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid option ID", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.VestingDetails(c.Context(), id)
	if err != nil {
		if errors.Is(err, optsvc.ErrOptionNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	asOf := time.Now().UTC()
	if s := c.Query("as_of"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return response.Error(c, "Invalid as_of date, expected YYYY-MM-DD", fiber.StatusBadRequest, nil)
		}
		asOf = parsed
	}
	vested, err := h.Service.VestedAsOf(c.Context(), id, asOf)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vesting details fetched successfully", fiber.Map{
		"events":        events,
		"vested_as_of":  asOf.Format("2006-01-02"),
		"shares_vested": vested,
	}, nil)
}

// GET /api/v1/options/:id/exercises
func (h *Handlers) Exercises(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid option ID", fiber.StatusBadRequest, nil)
	}
	history, err := h.Service.ExerciseHistory(c.Context(), id)
	if err != nil {
		if errors.Is(err, optsvc.ErrOptionNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Exercise history fetched successfully", history, nil)
}

// Exercise POST /api/v1/options/:id/exercise — converts vested shares into
// equity. All-or-nothing: a failed check leaves no partial writes.
func (h *Handlers) Exercise(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid option ID", fiber.StatusBadRequest, nil)
	}
	var req optsvc.ExerciseInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if user, ok := middleware.GetAuthUser(c); ok {
		req.ActorEmail = &user.Email
	}
	record, err := h.Service.Exercise(c.Context(), id, req)
	if err != nil {
		var insufficientVested *optsvc.InsufficientVestedSharesError
		var exceedsGrant *optsvc.ExerciseExceedsGrantError
		switch {
		case errors.As(err, &insufficientVested):
			return response.Error(c, err.Error(), fiber.StatusConflict, fiber.Map{
				"shares_vested": insufficientVested.Vested,
				"requested":     insufficientVested.Requested,
			})
		case errors.As(err, &exceedsGrant):
			return response.Error(c, err.Error(), fiber.StatusConflict, fiber.Map{
				"already_exercised": exceedsGrant.AlreadyExercised,
				"requested":         exceedsGrant.Requested,
				"grant_quantity":    exceedsGrant.GrantQuantity,
			})
		case errors.Is(err, optsvc.ErrOptionNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, optsvc.ErrOptionNotActive), errors.Is(err, optsvc.ErrInvalidQuantity):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	h.Cache.InvalidateCapTable(c.Context())
	return response.SuccessCreated(c, "Option exercised successfully", record, nil)
}

// Cancel POST /api/v1/options/:id/cancel — releases the unexercised
// remainder back to the plan pool.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid option ID", fiber.StatusBadRequest, nil)
	}
	var actorEmail *string
	if user, ok := middleware.GetAuthUser(c); ok {
		actorEmail = &user.Email
	}
	opt, err := h.Service.Cancel(c.Context(), id, actorEmail)
	if err != nil {
		switch {
		case errors.Is(err, optsvc.ErrOptionNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case errors.Is(err, optsvc.ErrOptionNotActive):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Option cancelled successfully", opt, nil)
}

// Update PATCH /api/v1/options/:id — admin-only status/notes override.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid option ID", fiber.StatusBadRequest, nil)
	}
	var req optsvc.UpdateOptionInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	opt, err := h.Service.Update(c.Context(), id, req)
	if err != nil {
		if errors.Is(err, optsvc.ErrOptionNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Option updated successfully", opt, nil)
}
