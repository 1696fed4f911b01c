package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shareholder types.
const (
	ShareholderFounder  = "founder"
	ShareholderInvestor = "investor"
	ShareholderEmployee = "employee"
	ShareholderOther    = "other"
)

type Shareholder struct {
	ShareholderID uuid.UUID `gorm:"column:shareholder_id;type:uuid;primaryKey" json:"shareholder_id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Type          string    `gorm:"column:type;type:varchar(20);not null;default:other" json:"type"`
	Email         *string   `gorm:"column:email" json:"email"`
	Phone         *string   `gorm:"column:phone" json:"phone"`
	Address       *string   `gorm:"column:address" json:"address"`
	TaxID         *string   `gorm:"column:tax_id" json:"tax_id"`
	Notes         *string   `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Shareholder) TableName() string {
	return "shareholders"
}

func (s *Shareholder) BeforeCreate(tx *gorm.DB) error {
	if s.ShareholderID == uuid.Nil {
		s.ShareholderID = uuid.New()
	}
	return nil
}
