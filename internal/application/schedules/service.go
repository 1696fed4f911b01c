package schedules

import (
	"context"
	"errors"

	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateScheduleInput struct {
	Name                string  `json:"name"`
	TotalDurationMonths int     `json:"total_duration_months"`
	CliffMonths         *int    `json:"cliff_months"`
	Frequency           string  `json:"frequency"`
	AccelerationOnExit  bool    `json:"acceleration_on_exit"`
	Description         *string `json:"description"`
}

func (s *Service) Create(ctx context.Context, in CreateScheduleInput) (*domain.VestingSchedule, error) {
	if in.TotalDurationMonths <= 0 {
		return nil, ErrInvalidDuration
	}
	sched := &domain.VestingSchedule{
		Name:                in.Name,
		TotalDurationMonths: in.TotalDurationMonths,
		CliffMonths:         12,
		Frequency:           in.Frequency,
		AccelerationOnExit:  in.AccelerationOnExit,
		Description:         in.Description,
	}
	if in.CliffMonths != nil {
		sched.CliffMonths = *in.CliffMonths
	}
	if sched.Frequency == "" {
		sched.Frequency = domain.FrequencyMonthly
	}
	if err := s.DB.WithContext(ctx).Create(sched).Error; err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *Service) List(ctx context.Context) ([]domain.VestingSchedule, error) {
	var out []domain.VestingSchedule
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.VestingSchedule, error) {
	var sched domain.VestingSchedule
	if err := s.DB.WithContext(ctx).Where("schedule_id = ?", id).First(&sched).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &sched, nil
}

// UpdateScheduleInput patches descriptive fields only. Duration, cliff and
// frequency stay fixed so already-generated vesting calendars keep meaning
// what they meant at grant time.
type UpdateScheduleInput struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	AccelerationOnExit *bool   `json:"acceleration_on_exit"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateScheduleInput) (*domain.VestingSchedule, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.AccelerationOnExit != nil {
		updates["acceleration_on_exit"] = *in.AccelerationOnExit
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&domain.VestingSchedule{}).
			Where("schedule_id = ?", id).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sched domain.VestingSchedule
		if err := tx.Where("schedule_id = ?", id).First(&sched).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}
		var refs int64
		if err := tx.Model(&domain.StockOption{}).
			Where("vesting_schedule_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrScheduleInUse
		}
		return tx.Where("schedule_id = ?", id).Delete(&domain.VestingSchedule{}).Error
	})
}

// UsageStats describes how widely a schedule is used by grants.
type UsageStats struct {
	domain.VestingSchedule
	OptionCount int64 `json:"option_count"`
	HolderCount int64 `json:"holder_count"`
	TotalShares int64 `json:"total_shares"`
}

func (s *Service) GetUsageStats(ctx context.Context, id uuid.UUID) (*UsageStats, error) {
	sched, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &UsageStats{VestingSchedule: *sched}
	err = s.DB.WithContext(ctx).Model(&domain.StockOption{}).
		Where("vesting_schedule_id = ?", id).
		Select("COUNT(option_id) AS option_count, COUNT(DISTINCT shareholder_id) AS holder_count, COALESCE(SUM(quantity), 0) AS total_shares").
		Scan(out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
