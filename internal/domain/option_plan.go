package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OptionPlan reserves a pool of shares in one share class for option grants.
// shares_issued is a server-maintained counter and must never exceed
// total_shares_reserved; all writes to it go through the plans ledger inside
// the transaction that also writes the triggering grant or cancellation.
type OptionPlan struct {
	PlanID              uuid.UUID  `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	Name                string     `gorm:"column:name;not null" json:"name"`
	ShareClassID        uuid.UUID  `gorm:"column:share_class_id;type:uuid;not null" json:"share_class_id"`
	TotalSharesReserved int64      `gorm:"column:total_shares_reserved;not null" json:"total_shares_reserved"`
	SharesIssued        int64      `gorm:"column:shares_issued;not null;default:0" json:"shares_issued"`
	StartDate           time.Time  `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate             *time.Time `gorm:"column:end_date;type:date" json:"end_date"`
	Description         *string    `gorm:"column:description" json:"description"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (OptionPlan) TableName() string {
	return "option_plans"
}

func (p *OptionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == uuid.Nil {
		p.PlanID = uuid.New()
	}
	return nil
}

// SharesAvailable is the reservation headroom left for new grants.
func (p *OptionPlan) SharesAvailable() int64 {
	return p.TotalSharesReserved - p.SharesIssued
}
