package options

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	optsvc "captable-backend/internal/application/options"
	"captable-backend/internal/domain"
	"captable-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	opt  *domain.StockOption
	plan domain.OptionPlan
}

func setupOptionHandlerTest(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Shareholder{},
		&domain.ShareClass{},
		&domain.EquityHolding{},
		&domain.EquityTransaction{},
		&domain.VestingSchedule{},
		&domain.OptionPlan{},
		&domain.StockOption{},
		&domain.OptionVestingEvent{},
		&domain.OptionExercise{},
		&domain.OptionEvent{},
	))

	sh := domain.Shareholder{Name: "Alice Employee", Type: domain.ShareholderEmployee}
	require.NoError(t, db.Create(&sh).Error)
	sc := domain.ShareClass{Name: "Common"}
	require.NoError(t, db.Create(&sc).Error)
	sched := domain.VestingSchedule{Name: "4y / 1y cliff", TotalDurationMonths: 48, CliffMonths: 12, Frequency: domain.FrequencyMonthly}
	require.NoError(t, db.Create(&sched).Error)
	plan := domain.OptionPlan{Name: "Pool", ShareClassID: sc.ShareClassID, TotalSharesReserved: 100000, StartDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&plan).Error)

	svc := &optsvc.Service{DB: db}
	opt, err := svc.Create(context.Background(), optsvc.CreateOptionInput{
		OptionPlanID:      plan.PlanID,
		ShareholderID:     sh.ShareholderID,
		VestingScheduleID: sched.ScheduleID,
		GrantDate:         time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpirationDate:    time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
		Quantity:          10000,
		ExercisePrice:     decimal.NewFromFloat(0.25),
		VestingStartDate:  time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("auth", middleware.AuthUser{UserID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin})
		return c.Next()
	})
	app.Post("/options/:id/exercise", h.Exercise)
	app.Post("/options/:id/cancel", h.Cancel)
	app.Get("/options/:id/vesting", h.Vesting)
	app.Get("/options", h.List)

	return &testEnv{app: app, db: db, opt: opt, plan: plan}
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestExerciseEndpoint_Success(t *testing.T) {
	env := setupOptionHandlerTest(t)

	status, body := postJSON(t, env.app, fmt.Sprintf("/options/%s/exercise", env.opt.OptionID), map[string]interface{}{
		"exercise_date":    "2022-06-01T00:00:00Z",
		"shares_exercised": 2500,
	})
	assert.Equal(t, 201, status)
	assert.Equal(t, "success", body["status"])

	var holding domain.EquityHolding
	require.NoError(t, env.db.First(&holding).Error)
	assert.Equal(t, int64(2500), holding.Quantity)
}

func TestExerciseEndpoint_InsufficientVestedDetails(t *testing.T) {
	env := setupOptionHandlerTest(t)

	status, body := postJSON(t, env.app, fmt.Sprintf("/options/%s/exercise", env.opt.OptionID), map[string]interface{}{
		"exercise_date":    "2022-06-01T00:00:00Z",
		"shares_exercised": 99999,
	})
	assert.Equal(t, 409, status)
	errObj := body["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.Equal(t, float64(99999), details["requested"])
	assert.NotNil(t, details["shares_vested"])
}

func TestExerciseEndpoint_UnknownOption(t *testing.T) {
	env := setupOptionHandlerTest(t)

	status, _ := postJSON(t, env.app, fmt.Sprintf("/options/%s/exercise", uuid.New()), map[string]interface{}{
		"exercise_date":    "2022-06-01T00:00:00Z",
		"shares_exercised": 100,
	})
	assert.Equal(t, 404, status)

	req := httptest.NewRequest("POST", "/options/not-a-uuid/exercise", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCancelEndpoint(t *testing.T) {
	env := setupOptionHandlerTest(t)

	status, body := postJSON(t, env.app, fmt.Sprintf("/options/%s/cancel", env.opt.OptionID), map[string]interface{}{})
	assert.Equal(t, 200, status)
	assert.Equal(t, "success", body["status"])

	// Second cancel fails with 400.
	status, _ = postJSON(t, env.app, fmt.Sprintf("/options/%s/cancel", env.opt.OptionID), map[string]interface{}{})
	assert.Equal(t, 400, status)

	var plan domain.OptionPlan
	require.NoError(t, env.db.First(&plan, "plan_id = ?", env.plan.PlanID).Error)
	assert.Equal(t, int64(0), plan.SharesIssued)
}

func TestVestingEndpoint(t *testing.T) {
	env := setupOptionHandlerTest(t)

	req := httptest.NewRequest("GET", fmt.Sprintf("/options/%s/vesting?as_of=2019-06-01", env.opt.OptionID), nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	data := parsed["data"].(map[string]interface{})
	// Before the cliff nothing has vested.
	assert.Equal(t, float64(0), data["shares_vested"])

	req = httptest.NewRequest("GET", fmt.Sprintf("/options/%s/vesting?as_of=bogus", env.opt.OptionID), nil)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListEndpoint_StatusFilter(t *testing.T) {
	env := setupOptionHandlerTest(t)

	req := httptest.NewRequest("GET", "/options?status=active", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Len(t, parsed["data"].([]interface{}), 1)

	req = httptest.NewRequest("GET", "/options?status=cancelled", nil)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Empty(t, parsed["data"])
}
