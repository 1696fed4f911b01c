package schedules

import (
	"context"
	"testing"
	"time"

	"captable-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupScheduleTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.VestingSchedule{},
		&domain.StockOption{},
	))
	return &Service{DB: db}, db
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := setupScheduleTest(t)

	sched, err := svc.Create(context.Background(), CreateScheduleInput{
		Name:                "Standard",
		TotalDurationMonths: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, sched.CliffMonths)
	assert.Equal(t, domain.FrequencyMonthly, sched.Frequency)

	zero := 0
	noCliff, err := svc.Create(context.Background(), CreateScheduleInput{
		Name:                "No cliff",
		TotalDurationMonths: 24,
		CliffMonths:         &zero,
		Frequency:           domain.FrequencyQuarterly,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, noCliff.CliffMonths)
	assert.Equal(t, domain.FrequencyQuarterly, noCliff.Frequency)
}

func TestCreate_RejectsNonPositiveDuration(t *testing.T) {
	svc, _ := setupScheduleTest(t)
	_, err := svc.Create(context.Background(), CreateScheduleInput{Name: "Broken", TotalDurationMonths: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestUpdate_OnlyDescriptiveFields(t *testing.T) {
	svc, _ := setupScheduleTest(t)
	sched, err := svc.Create(context.Background(), CreateScheduleInput{Name: "Standard", TotalDurationMonths: 48})
	require.NoError(t, err)

	name := "Renamed"
	accel := true
	updated, err := svc.Update(context.Background(), sched.ScheduleID, UpdateScheduleInput{Name: &name, AccelerationOnExit: &accel})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.AccelerationOnExit)
	// Terms are immutable after creation.
	assert.Equal(t, 48, updated.TotalDurationMonths)
	assert.Equal(t, 12, updated.CliffMonths)
}

func TestDelete_GuardsReferencedSchedules(t *testing.T) {
	svc, db := setupScheduleTest(t)
	sched, err := svc.Create(context.Background(), CreateScheduleInput{Name: "Standard", TotalDurationMonths: 48})
	require.NoError(t, err)

	opt := domain.StockOption{
		OptionPlanID:      uuid.New(),
		ShareholderID:     uuid.New(),
		VestingScheduleID: sched.ScheduleID,
		GrantDate:         time.Now(),
		ExpirationDate:    time.Now().AddDate(10, 0, 0),
		Quantity:          100,
		VestingStartDate:  time.Now(),
	}
	require.NoError(t, db.Create(&opt).Error)

	assert.ErrorIs(t, svc.Delete(context.Background(), sched.ScheduleID), ErrScheduleInUse)

	require.NoError(t, db.Delete(&opt).Error)
	require.NoError(t, svc.Delete(context.Background(), sched.ScheduleID))
	assert.ErrorIs(t, svc.Delete(context.Background(), sched.ScheduleID), ErrScheduleNotFound)
}

func TestGetUsageStats(t *testing.T) {
	svc, db := setupScheduleTest(t)
	sched, err := svc.Create(context.Background(), CreateScheduleInput{Name: "Standard", TotalDurationMonths: 48})
	require.NoError(t, err)

	holderA, holderB := uuid.New(), uuid.New()
	for _, g := range []struct {
		holder   uuid.UUID
		quantity int64
	}{
		{holderA, 1000},
		{holderA, 500},
		{holderB, 2000},
	} {
		require.NoError(t, db.Create(&domain.StockOption{
			OptionPlanID:      uuid.New(),
			ShareholderID:     g.holder,
			VestingScheduleID: sched.ScheduleID,
			GrantDate:         time.Now(),
			ExpirationDate:    time.Now().AddDate(10, 0, 0),
			Quantity:          g.quantity,
			VestingStartDate:  time.Now(),
		}).Error)
	}

	stats, err := svc.GetUsageStats(context.Background(), sched.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.OptionCount)
	assert.Equal(t, int64(2), stats.HolderCount)
	assert.Equal(t, int64(3500), stats.TotalShares)
}
