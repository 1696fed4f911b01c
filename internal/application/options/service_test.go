package options

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	planssvc "captable-backend/internal/application/plans"
	"captable-backend/internal/domain"

	"github.com/google/uuid"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc         *Service
	db          *gorm.DB
	shareholder domain.Shareholder
	shareClass  domain.ShareClass
	schedule    domain.VestingSchedule
	plan        domain.OptionPlan
}

func setupOptionTest(t *testing.T) *fixture {
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

	f := &fixture{svc: &Service{DB: db}, db: db}
	f.shareholder = domain.Shareholder{Name: "Alice Employee", Type: domain.ShareholderEmployee}
	require.NoError(t, db.Create(&f.shareholder).Error)
	f.shareClass = domain.ShareClass{Name: "Common"}
	require.NoError(t, db.Create(&f.shareClass).Error)
	f.schedule = domain.VestingSchedule{
		Name:                "4y / 1y cliff",
		TotalDurationMonths: 48,
		CliffMonths:         12,
		Frequency:           domain.FrequencyMonthly,
	}
	require.NoError(t, db.Create(&f.schedule).Error)
	f.plan = domain.OptionPlan{
		Name:                "2020 Plan",
		ShareClassID:        f.shareClass.ShareClassID,
		TotalSharesReserved: 100000,
		StartDate:           date(2020, 1, 1),
	}
	require.NoError(t, db.Create(&f.plan).Error)
	return f
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) grant(t *testing.T, quantity int64, vestingStart time.Time) *domain.StockOption {
	t.Helper()
	opt, err := f.svc.Create(context.Background(), CreateOptionInput{
		OptionPlanID:      f.plan.PlanID,
		ShareholderID:     f.shareholder.ShareholderID,
		VestingScheduleID: f.schedule.ScheduleID,
		GrantDate:         vestingStart,
		ExpirationDate:    vestingStart.AddDate(10, 0, 0),
		Quantity:          quantity,
		ExercisePrice:     decimal.NewFromFloat(0.25),
		VestingStartDate:  vestingStart,
	})
	require.NoError(t, err)
	return opt
}

func TestCreate_ReservesAndGeneratesCalendar(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2020, 1, 1))

	assert.Equal(t, domain.OptionStatusActive, opt.Status)

	var plan domain.OptionPlan
	require.NoError(t, f.db.First(&plan, "plan_id = ?", f.plan.PlanID).Error)
	assert.Equal(t, int64(10000), plan.SharesIssued)

	var events []domain.OptionVestingEvent
	require.NoError(t, f.db.Where("stock_option_id = ?", opt.OptionID).Order("vesting_date ASC").Find(&events).Error)
	var total int64
	for _, e := range events {
		total += e.SharesVested
	}
	assert.Equal(t, int64(10000), total)
	// Cliff tranche carries 12/48 of the grant.
	assert.Equal(t, int64(2500), events[0].SharesVested)

	var audit domain.OptionEvent
	require.NoError(t, f.db.First(&audit, "stock_option_id = ?", opt.OptionID).Error)
	assert.Equal(t, domain.OptionEventGranted, audit.EventType)
}

func TestCreate_InsufficientPlanShares(t *testing.T) {
	f := setupOptionTest(t)
	f.grant(t, 90000, date(2020, 1, 1))

	_, err := f.svc.Create(context.Background(), CreateOptionInput{
		OptionPlanID:      f.plan.PlanID,
		ShareholderID:     f.shareholder.ShareholderID,
		VestingScheduleID: f.schedule.ScheduleID,
		GrantDate:         date(2020, 6, 1),
		ExpirationDate:    date(2030, 6, 1),
		Quantity:          20000,
		ExercisePrice:     decimal.NewFromFloat(0.25),
		VestingStartDate:  date(2020, 6, 1),
	})
	var insufficient *planssvc.InsufficientSharesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(10000), insufficient.Available)
	assert.Equal(t, int64(20000), insufficient.Requested)

	// The failed grant must leave nothing behind.
	var plan domain.OptionPlan
	require.NoError(t, f.db.First(&plan, "plan_id = ?", f.plan.PlanID).Error)
	assert.Equal(t, int64(90000), plan.SharesIssued)
	var count int64
	require.NoError(t, f.db.Model(&domain.StockOption{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreate_RetryAfterFailureSucceeds(t *testing.T) {
	f := setupOptionTest(t)
	f.grant(t, 90000, date(2020, 1, 1))

	_, err := f.svc.Create(context.Background(), CreateOptionInput{
		OptionPlanID:      f.plan.PlanID,
		ShareholderID:     f.shareholder.ShareholderID,
		VestingScheduleID: f.schedule.ScheduleID,
		GrantDate:         date(2020, 6, 1),
		ExpirationDate:    date(2030, 6, 1),
		Quantity:          20000,
		ExercisePrice:     decimal.NewFromFloat(0.25),
		VestingStartDate:  date(2020, 6, 1),
	})
	require.Error(t, err)

	// A grant that fits the remaining pool still goes through.
	f.grant(t, 10000, date(2020, 6, 1))
	var plan domain.OptionPlan
	require.NoError(t, f.db.First(&plan, "plan_id = ?", f.plan.PlanID).Error)
	assert.Equal(t, int64(100000), plan.SharesIssued)
}

func TestCancel_ReleasesSharesToPlan(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2020, 1, 1))

	cancelled, err := f.svc.Cancel(context.Background(), opt.OptionID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OptionStatusCancelled, cancelled.Status)

	var plan domain.OptionPlan
	require.NoError(t, f.db.First(&plan, "plan_id = ?", f.plan.PlanID).Error)
	assert.Equal(t, int64(0), plan.SharesIssued)
}

func TestCancel_SecondCancelRejected(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2020, 1, 1))

	_, err := f.svc.Cancel(context.Background(), opt.OptionID, nil)
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), opt.OptionID, nil)
	assert.ErrorIs(t, err, ErrOptionNotActive)

	// Shares were not released twice.
	var plan domain.OptionPlan
	require.NoError(t, f.db.First(&plan, "plan_id = ?", f.plan.PlanID).Error)
	assert.Equal(t, int64(0), plan.SharesIssued)
}

func TestCancel_KeepsExercisedShares(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2018, 1, 1))

	_, err := f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    date(2022, 6, 1),
		SharesExercised: 4000,
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), opt.OptionID, nil)
	require.NoError(t, err)

	// Only the unexercised 6000 return to the pool.
	var plan domain.OptionPlan
	require.NoError(t, f.db.First(&plan, "plan_id = ?", f.plan.PlanID).Error)
	assert.Equal(t, int64(4000), plan.SharesIssued)
}

func TestExercise_CreatesEquity(t *testing.T) {
	f := setupOptionTest(t)
	// Vesting started 2018, fully vested by now.
	opt := f.grant(t, 10000, date(2018, 1, 1))

	record, err := f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    date(2022, 6, 1),
		SharesExercised: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), record.SharesExercised)
	// Exercises settle at the grant's strike price.
	assert.True(t, record.ExercisePrice.Equal(decimal.NewFromFloat(0.25)))

	var holding domain.EquityHolding
	require.NoError(t, f.db.First(&holding, "shareholder_id = ?", f.shareholder.ShareholderID).Error)
	assert.Equal(t, int64(2500), holding.Quantity)
	assert.Equal(t, f.shareClass.ShareClassID, holding.ShareClassID)

	var tx domain.EquityTransaction
	require.NoError(t, f.db.First(&tx, "shareholder_id = ?", f.shareholder.ShareholderID).Error)
	assert.Equal(t, domain.TransactionExercise, tx.TransactionType)
	assert.Equal(t, int64(2500), tx.Quantity)

	// Partial exercise keeps the grant active.
	var after domain.StockOption
	require.NoError(t, f.db.First(&after, "option_id = ?", opt.OptionID).Error)
	assert.Equal(t, domain.OptionStatusActive, after.Status)
}

func TestExercise_FullyExercisedFlipsStatus(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2018, 1, 1))

	_, err := f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    date(2022, 6, 1),
		SharesExercised: 10000,
	})
	require.NoError(t, err)

	var after domain.StockOption
	require.NoError(t, f.db.First(&after, "option_id = ?", opt.OptionID).Error)
	assert.Equal(t, domain.OptionStatusExercised, after.Status)
}

func TestExercise_InsufficientVestedIsAllOrNothing(t *testing.T) {
	f := setupOptionTest(t)
	// Vesting started two years ago on a 4-year schedule: roughly half vested.
	start := time.Now().UTC().AddDate(-2, 0, 0)
	opt := f.grant(t, 10000, start)

	_, err := f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    time.Now().UTC(),
		SharesExercised: 9000,
	})
	var insufficient *InsufficientVestedSharesError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(9000), insufficient.Requested)
	assert.Less(t, insufficient.Vested, int64(9000))

	// Nothing was written.
	var exercises, holdings, txs int64
	require.NoError(t, f.db.Model(&domain.OptionExercise{}).Count(&exercises).Error)
	require.NoError(t, f.db.Model(&domain.EquityHolding{}).Count(&holdings).Error)
	require.NoError(t, f.db.Model(&domain.EquityTransaction{}).Count(&txs).Error)
	assert.Zero(t, exercises)
	assert.Zero(t, holdings)
	assert.Zero(t, txs)
}

func TestExercise_CumulativeCannotExceedGrant(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2018, 1, 1))

	_, err := f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    date(2022, 6, 1),
		SharesExercised: 10000,
	})
	require.NoError(t, err)
	_, err = f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    date(2022, 7, 1),
		SharesExercised: 1,
	})
	// Fully exercised grants are no longer active.
	assert.ErrorIs(t, err, ErrOptionNotActive)
}

func TestExercise_CancelledGrantRejected(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 10000, date(2018, 1, 1))
	_, err := f.svc.Cancel(context.Background(), opt.OptionID, nil)
	require.NoError(t, err)

	_, err = f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
		ExerciseDate:    date(2022, 6, 1),
		SharesExercised: 100,
	})
	assert.ErrorIs(t, err, ErrOptionNotActive)
}

func TestVestedAsOf(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 9600, date(2020, 1, 1))

	cases := []struct {
		asOf   time.Time
		vested int64
	}{
		{date(2020, 6, 1), 0},    // before cliff
		{date(2021, 1, 1), 2400}, // cliff: 12/48
		{date(2021, 2, 1), 2600}, // one monthly tranche after cliff
		{date(2024, 1, 1), 9600}, // fully vested
		{date(2030, 1, 1), 9600}, // long after
	}
	for _, tc := range cases {
		vested, err := f.svc.VestedAsOf(context.Background(), opt.OptionID, tc.asOf)
		require.NoError(t, err)
		assert.Equal(t, tc.vested, vested, "as of %s", tc.asOf.Format("2006-01-02"))
	}
}

func TestCreate_UnknownReferencesRejected(t *testing.T) {
	f := setupOptionTest(t)

	in := CreateOptionInput{
		OptionPlanID:      f.plan.PlanID,
		ShareholderID:     f.shareholder.ShareholderID,
		VestingScheduleID: f.schedule.ScheduleID,
		GrantDate:         date(2020, 1, 1),
		ExpirationDate:    date(2030, 1, 1),
		Quantity:          100,
		ExercisePrice:     decimal.NewFromFloat(0.25),
		VestingStartDate:  date(2020, 1, 1),
	}

	bad := in
	bad.ShareholderID = uuid.New()
	_, err := f.svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrShareholderNotFound)

	bad = in
	bad.VestingScheduleID = uuid.New()
	_, err = f.svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	bad = in
	bad.OptionPlanID = uuid.New()
	_, err = f.svc.Create(context.Background(), bad)
	assert.True(t, errors.Is(err, planssvc.ErrPlanNotFound))

	bad = in
	bad.Quantity = 0
	_, err = f.svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestExercise_ConcurrentRequestsSerialize(t *testing.T) {
	f := setupOptionTest(t)
	opt := f.grant(t, 1000, date(2020, 1, 1))

	// sqlite gives each :memory: connection its own database; pin the pool
	// to one connection so both goroutines see the same data and their
	// transactions queue behind each other.
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// Fully vested by 2025; each request is fine alone, together they
	// overshoot the grant.
	asOf := date(2025, 1, 1)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Exercise(context.Background(), opt.OptionID, ExerciseInput{
				ExerciseDate:    asOf,
				SharesExercised: 600,
			})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			failures++
			var exceeds *ExerciseExceedsGrantError
			assert.ErrorAs(t, err, &exceeds)
		}
	}
	assert.Equal(t, 1, failures)

	var total int64
	require.NoError(t, f.db.Model(&domain.OptionExercise{}).
		Where("stock_option_id = ?", opt.OptionID).
		Select("COALESCE(SUM(shares_exercised), 0)").
		Scan(&total).Error)
	assert.Equal(t, int64(600), total)
}
