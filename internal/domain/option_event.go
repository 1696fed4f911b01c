package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Option lifecycle event types.
const (
	OptionEventGranted   = "GRANTED"
	OptionEventCancelled = "CANCELLED"
	OptionEventExercised = "EXERCISED"
)

// OptionEvent is an append-only trail of lifecycle transitions on a grant,
// with a JSON payload describing the transition.
type OptionEvent struct {
	OptionEventID uuid.UUID      `gorm:"column:option_event_id;type:uuid;primaryKey" json:"option_event_id"`
	StockOptionID uuid.UUID      `gorm:"column:stock_option_id;type:uuid;not null;index" json:"stock_option_id"`
	EventType     string         `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	ActorEmail    *string        `gorm:"column:actor_email" json:"actor_email"`
	EventData     datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (OptionEvent) TableName() string {
	return "option_events"
}

func (e *OptionEvent) BeforeCreate(tx *gorm.DB) error {
	if e.OptionEventID == uuid.Nil {
		e.OptionEventID = uuid.New()
	}
	return nil
}
