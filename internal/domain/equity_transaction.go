package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Equity transaction types. Issuance and exercise add shares to a holding,
// repurchase and cancellation remove them.
const (
	TransactionIssuance     = "issuance"
	TransactionRepurchase   = "repurchase"
	TransactionCancellation = "cancellation"
	TransactionExercise     = "exercise"
)

// EquityTransaction is the append-only audit trail of equity movements.
// Rows are never updated or deleted.
type EquityTransaction struct {
	TxID            uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	TransactionType string          `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"`
	ShareholderID   uuid.UUID       `gorm:"column:shareholder_id;type:uuid;not null" json:"shareholder_id"`
	ShareClassID    uuid.UUID       `gorm:"column:share_class_id;type:uuid;not null" json:"share_class_id"`
	Quantity        int64           `gorm:"column:quantity;not null" json:"quantity"`
	PricePerShare   decimal.Decimal `gorm:"column:price_per_share;type:decimal(18,4);not null;default:0" json:"price_per_share"`
	TransactionDate time.Time       `gorm:"column:transaction_date;type:date;not null" json:"transaction_date"`
	Notes           *string         `gorm:"column:notes" json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (EquityTransaction) TableName() string {
	return "equity_transactions"
}

func (t *EquityTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
