package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EquityHolding is the current ownership snapshot for one
// (shareholder, share class) pair. Option exercises and issuances for the
// same pair accumulate into a single row; the equity_transactions table is
// the authoritative history behind the quantity.
type EquityHolding struct {
	HoldingID         uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	ShareholderID     uuid.UUID       `gorm:"column:shareholder_id;type:uuid;not null;uniqueIndex:idx_holder_class" json:"shareholder_id"`
	ShareClassID      uuid.UUID       `gorm:"column:share_class_id;type:uuid;not null;uniqueIndex:idx_holder_class" json:"share_class_id"`
	Quantity          int64           `gorm:"column:quantity;not null;default:0" json:"quantity"`
	PricePerShare     decimal.Decimal `gorm:"column:price_per_share;type:decimal(18,4);not null;default:0" json:"price_per_share"`
	IssueDate         time.Time       `gorm:"column:issue_date;type:date;not null" json:"issue_date"`
	CertificateNumber *string         `gorm:"column:certificate_number" json:"certificate_number"`
	Notes             *string         `gorm:"column:notes" json:"notes"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (EquityHolding) TableName() string {
	return "equity_holdings"
}

func (h *EquityHolding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
