package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock option statuses. Active is the only non-terminal state: exercised,
// cancelled and expired are never left once reached.
const (
	OptionStatusActive    = "active"
	OptionStatusExercised = "exercised"
	OptionStatusCancelled = "cancelled"
	OptionStatusExpired   = "expired"
)

// StockOption is a single option grant. Quantity and exercise price are
// fixed at creation; quantity is the ceiling for both total vesting and
// total exercise.
type StockOption struct {
	OptionID          uuid.UUID       `gorm:"column:option_id;type:uuid;primaryKey" json:"option_id"`
	OptionPlanID      uuid.UUID       `gorm:"column:option_plan_id;type:uuid;not null" json:"option_plan_id"`
	ShareholderID     uuid.UUID       `gorm:"column:shareholder_id;type:uuid;not null" json:"shareholder_id"`
	VestingScheduleID uuid.UUID       `gorm:"column:vesting_schedule_id;type:uuid;not null" json:"vesting_schedule_id"`
	GrantDate         time.Time       `gorm:"column:grant_date;type:date;not null" json:"grant_date"`
	ExpirationDate    time.Time       `gorm:"column:expiration_date;type:date;not null" json:"expiration_date"`
	Quantity          int64           `gorm:"column:quantity;not null" json:"quantity"`
	ExercisePrice     decimal.Decimal `gorm:"column:exercise_price;type:decimal(18,4);not null" json:"exercise_price"`
	VestingStartDate  time.Time       `gorm:"column:vesting_start_date;type:date;not null" json:"vesting_start_date"`
	Status            string          `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	Notes             *string         `gorm:"column:notes" json:"notes"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (StockOption) TableName() string {
	return "stock_options"
}

func (o *StockOption) BeforeCreate(tx *gorm.DB) error {
	if o.OptionID == uuid.Nil {
		o.OptionID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OptionStatusActive
	}
	return nil
}
