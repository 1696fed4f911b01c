package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vesting frequencies.
const (
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyAnnually  = "annually"
)

// VestingSchedule defines how a grant vests over time. Duration, cliff and
// frequency are frozen once a stock option references the schedule; updates
// only touch name, description and the acceleration flag.
type VestingSchedule struct {
	ScheduleID          uuid.UUID `gorm:"column:schedule_id;type:uuid;primaryKey" json:"schedule_id"`
	Name                string    `gorm:"column:name;not null" json:"name"`
	TotalDurationMonths int       `gorm:"column:total_duration_months;not null" json:"total_duration_months"`
	CliffMonths         int       `gorm:"column:cliff_months;not null;default:12" json:"cliff_months"`
	Frequency           string    `gorm:"column:frequency;type:varchar(10);not null;default:monthly" json:"frequency"`
	AccelerationOnExit  bool      `gorm:"column:acceleration_on_exit;not null;default:false" json:"acceleration_on_exit"`
	Description         *string   `gorm:"column:description" json:"description"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (VestingSchedule) TableName() string {
	return "vesting_schedules"
}

func (v *VestingSchedule) BeforeCreate(tx *gorm.DB) error {
	if v.ScheduleID == uuid.Nil {
		v.ScheduleID = uuid.New()
	}
	if v.Frequency == "" {
		v.Frequency = FrequencyMonthly
	}
	return nil
}
