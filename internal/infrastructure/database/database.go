package database

import (
	"captable-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when running behind a connection
// pooler such as PgBouncer.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all cap-table models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.ShareClass{},
		&domain.Shareholder{},
		&domain.EquityHolding{},
		&domain.EquityTransaction{},
		&domain.VestingSchedule{},
		&domain.OptionPlan{},
		&domain.StockOption{},
		&domain.OptionVestingEvent{},
		&domain.OptionExercise{},
		&domain.OptionEvent{},
	)
}
