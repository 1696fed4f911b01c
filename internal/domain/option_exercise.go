package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OptionExercise records one exercise against a grant. Append-only; the
// exercise price is copied from the grant at exercise time.
type OptionExercise struct {
	ExerciseID      uuid.UUID       `gorm:"column:exercise_id;type:uuid;primaryKey" json:"exercise_id"`
	StockOptionID   uuid.UUID       `gorm:"column:stock_option_id;type:uuid;not null;index" json:"stock_option_id"`
	ExerciseDate    time.Time       `gorm:"column:exercise_date;type:date;not null" json:"exercise_date"`
	SharesExercised int64           `gorm:"column:shares_exercised;not null" json:"shares_exercised"`
	ExercisePrice   decimal.Decimal `gorm:"column:exercise_price;type:decimal(18,4);not null" json:"exercise_price"`
	Notes           *string         `gorm:"column:notes" json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (OptionExercise) TableName() string {
	return "option_exercises"
}

func (e *OptionExercise) BeforeCreate(tx *gorm.DB) error {
	if e.ExerciseID == uuid.Nil {
		e.ExerciseID = uuid.New()
	}
	return nil
}
