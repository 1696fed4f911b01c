package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OptionVestingEvent is one tranche of a grant's vesting calendar. The full
// set is generated once at grant time and never regenerated; the sum of
// shares_vested over a grant equals the grant quantity exactly.
type OptionVestingEvent struct {
	EventID       uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	StockOptionID uuid.UUID `gorm:"column:stock_option_id;type:uuid;not null;index" json:"stock_option_id"`
	VestingDate   time.Time `gorm:"column:vesting_date;type:date;not null" json:"vesting_date"`
	SharesVested  int64     `gorm:"column:shares_vested;not null" json:"shares_vested"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (OptionVestingEvent) TableName() string {
	return "option_vesting_events"
}

func (e *OptionVestingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
