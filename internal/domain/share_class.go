package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShareClass describes a class of stock (common, preferred series, ...).
// Economic terms are immutable in spirit once holdings reference the class;
// only descriptive fields should change after that point.
type ShareClass struct {
	ShareClassID          uuid.UUID       `gorm:"column:share_class_id;type:uuid;primaryKey" json:"share_class_id"`
	Name                  string          `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description           *string         `gorm:"column:description" json:"description"`
	LiquidationPreference decimal.Decimal `gorm:"column:liquidation_preference;type:decimal(18,4);not null;default:1.0" json:"liquidation_preference"`
	ConversionRatio       decimal.Decimal `gorm:"column:conversion_ratio;type:decimal(18,4);not null;default:1.0" json:"conversion_ratio"`
	IsPreferred           bool            `gorm:"column:is_preferred;not null;default:false" json:"is_preferred"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func (ShareClass) TableName() string {
	return "share_classes"
}

func (sc *ShareClass) BeforeCreate(tx *gorm.DB) error {
	if sc.ShareClassID == uuid.Nil {
		sc.ShareClassID = uuid.New()
	}
	if sc.LiquidationPreference.IsZero() {
		sc.LiquidationPreference = decimal.NewFromInt(1)
	}
	if sc.ConversionRatio.IsZero() {
		sc.ConversionRatio = decimal.NewFromInt(1)
	}
	return nil
}
