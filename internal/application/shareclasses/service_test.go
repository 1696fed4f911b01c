package shareclasses

import (
	"context"
	"testing"
	"time"

	"captable-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupClassTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.ShareClass{},
		&domain.EquityHolding{},
		&domain.OptionPlan{},
	))
	return &Service{DB: db}, db
}

func TestCreate_DefaultsToCommonTerms(t *testing.T) {
	svc, _ := setupClassTest(t)

	sc, err := svc.Create(context.Background(), ShareClassInput{Name: "Common"})
	require.NoError(t, err)
	assert.True(t, sc.LiquidationPreference.Equal(decimal.NewFromInt(1)))
	assert.True(t, sc.ConversionRatio.Equal(decimal.NewFromInt(1)))
	assert.False(t, sc.IsPreferred)

	pref := decimal.NewFromFloat(1.5)
	sb, err := svc.Create(context.Background(), ShareClassInput{
		Name:                  "Series B",
		LiquidationPreference: &pref,
		IsPreferred:           true,
	})
	require.NoError(t, err)
	assert.True(t, sb.LiquidationPreference.Equal(pref))
	assert.True(t, sb.IsPreferred)
}

func TestUpdate_PreservesUnsentDecimalTerms(t *testing.T) {
	svc, _ := setupClassTest(t)
	pref := decimal.NewFromFloat(2)
	sc, err := svc.Create(context.Background(), ShareClassInput{
		Name:                  "Series A",
		LiquidationPreference: &pref,
		IsPreferred:           true,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), sc.ShareClassID, ShareClassInput{
		Name:        "Series A-1",
		IsPreferred: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Series A-1", updated.Name)
	assert.True(t, updated.LiquidationPreference.Equal(pref))
}

func TestDelete_GuardsReferencedClasses(t *testing.T) {
	svc, db := setupClassTest(t)
	sc, err := svc.Create(context.Background(), ShareClassInput{Name: "Common"})
	require.NoError(t, err)

	holding := domain.EquityHolding{
		ShareholderID: uuid.New(),
		ShareClassID:  sc.ShareClassID,
		Quantity:      1000,
		IssueDate:     time.Now(),
	}
	require.NoError(t, db.Create(&holding).Error)
	assert.ErrorIs(t, svc.Delete(context.Background(), sc.ShareClassID), ErrShareClassInUse)

	require.NoError(t, db.Delete(&holding).Error)
	plan := domain.OptionPlan{
		Name:                "2024 ESOP",
		ShareClassID:        sc.ShareClassID,
		TotalSharesReserved: 100000,
		StartDate:           time.Now(),
	}
	require.NoError(t, db.Create(&plan).Error)
	assert.ErrorIs(t, svc.Delete(context.Background(), sc.ShareClassID), ErrShareClassInUse)

	require.NoError(t, db.Delete(&plan).Error)
	require.NoError(t, svc.Delete(context.Background(), sc.ShareClassID))
	assert.ErrorIs(t, svc.Delete(context.Background(), sc.ShareClassID), ErrShareClassNotFound)
}

func TestListWithTotals(t *testing.T) {
	svc, db := setupClassTest(t)
	common, err := svc.Create(context.Background(), ShareClassInput{Name: "Common"})
	require.NoError(t, err)
	seriesA, err := svc.Create(context.Background(), ShareClassInput{Name: "Series A", IsPreferred: true})
	require.NoError(t, err)

	holderA, holderB := uuid.New(), uuid.New()
	for _, h := range []struct {
		holder   uuid.UUID
		class    uuid.UUID
		quantity int64
	}{
		{holderA, common.ShareClassID, 7000},
		{holderB, common.ShareClassID, 3000},
		{holderA, seriesA.ShareClassID, 2000},
	} {
		require.NoError(t, db.Create(&domain.EquityHolding{
			ShareholderID: h.holder,
			ShareClassID:  h.class,
			Quantity:      h.quantity,
			IssueDate:     time.Now(),
		}).Error)
	}

	rows, err := svc.ListWithTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// List orders by name, so Common precedes Series A.
	assert.Equal(t, int64(10000), rows[0].TotalShares)
	assert.Equal(t, int64(2), rows[0].ShareholderCount)
	assert.Equal(t, int64(2000), rows[1].TotalShares)
	assert.Equal(t, int64(1), rows[1].ShareholderCount)
}
