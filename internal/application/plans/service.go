package plans

import (
	"context"
	"errors"
	"time"

	"captable-backend/internal/domain"
	"captable-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages option plans and their share-reservation ledger.
type Service struct {
	DB *gorm.DB
}

type CreatePlanInput struct {
	Name                string     `json:"name"`
	ShareClassID        uuid.UUID  `json:"share_class_id"`
	TotalSharesReserved int64      `json:"total_shares_reserved"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	Description         *string    `json:"description"`
}

func (s *Service) Create(ctx context.Context, in CreatePlanInput) (*domain.OptionPlan, error) {
	var shareClass domain.ShareClass
	if err := s.DB.WithContext(ctx).Where("share_class_id = ?", in.ShareClassID).First(&shareClass).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareClassNotFound
		}
		return nil, err
	}

	plan := &domain.OptionPlan{
		Name:                in.Name,
		ShareClassID:        in.ShareClassID,
		TotalSharesReserved: in.TotalSharesReserved,
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
		Description:         in.Description,
	}
	if err := s.DB.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) List(ctx context.Context) ([]domain.OptionPlan, error) {
	var plans []domain.OptionPlan
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *Service) Get(ctx context.Context, planID uuid.UUID) (*domain.OptionPlan, error) {
	var plan domain.OptionPlan
	if err := s.DB.WithContext(ctx).Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// PlanWithGrants is a plan plus every grant drawn from it.
type PlanWithGrants struct {
	domain.OptionPlan
	Grants []domain.StockOption `json:"grants"`
}

func (s *Service) GetWithGrants(ctx context.Context, planID uuid.UUID) (*PlanWithGrants, error) {
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	var grants []domain.StockOption
	if err := s.DB.WithContext(ctx).
		Where("option_plan_id = ?", planID).
		Order("grant_date DESC").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return &PlanWithGrants{OptionPlan: *plan, Grants: grants}, nil
}

// UpdatePlanInput patches descriptive fields only. Reservation size changes
// go through Resize so the issued-shares invariant is checked.
type UpdatePlanInput struct {
	Name        *string    `json:"name"`
	EndDate     *time.Time `json:"end_date"`
	Description *string    `json:"description"`
}

func (s *Service) Update(ctx context.Context, planID uuid.UUID, in UpdatePlanInput) (*domain.OptionPlan, error) {
	plan, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.EndDate != nil {
		updates["end_date"] = *in.EndDate
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if len(updates) == 0 {
		return plan, nil
	}
	if err := s.DB.WithContext(ctx).Model(&domain.OptionPlan{}).
		Where("plan_id = ?", planID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, planID)
}

// Resize changes total_shares_reserved. It locks the plan row so a
// concurrent grant cannot slip issued shares past the new total between
// check and write.
func (s *Service) Resize(ctx context.Context, planID uuid.UUID, newTotal int64) (*domain.OptionPlan, error) {
	var plan domain.OptionPlan
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}
		if newTotal < plan.SharesIssued {
			return ErrInvalidResize
		}
		plan.TotalSharesReserved = newTotal
		return tx.Model(&domain.OptionPlan{}).
			Where("plan_id = ?", planID).
			Update("total_shares_reserved", newTotal).Error
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *Service) Delete(ctx context.Context, planID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan domain.OptionPlan
		if err := tx.Where("plan_id = ?", planID).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}
		var granted int64
		if err := tx.Model(&domain.StockOption{}).
			Where("option_plan_id = ?", planID).
			Count(&granted).Error; err != nil {
			return err
		}
		if granted > 0 {
			return ErrPlanInUse
		}
		return tx.Where("plan_id = ?", planID).Delete(&domain.OptionPlan{}).Error
	})
}

// Reserve draws quantity shares from the plan's pool inside the caller's
// transaction. The plan row is locked before the headroom check so two
// concurrent grants cannot jointly over-reserve. Returns the locked plan.
func Reserve(tx *gorm.DB, planID uuid.UUID, quantity int64) (*domain.OptionPlan, error) {
	var plan domain.OptionPlan
	if err := database.LockForUpdate(tx).
		Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.SharesAvailable() < quantity {
		return nil, &InsufficientSharesError{Available: plan.SharesAvailable(), Requested: quantity}
	}
	plan.SharesIssued += quantity
	if err := tx.Model(&domain.OptionPlan{}).
		Where("plan_id = ?", planID).
		Update("shares_issued", plan.SharesIssued).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// Release returns quantity shares to the plan's pool inside the caller's
// transaction (cancellation path). Callers must not release more than is
// currently issued.
func Release(tx *gorm.DB, planID uuid.UUID, quantity int64) error {
	var plan domain.OptionPlan
	if err := database.LockForUpdate(tx).
		Where("plan_id = ?", planID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return tx.Model(&domain.OptionPlan{}).
		Where("plan_id = ?", planID).
		Update("shares_issued", plan.SharesIssued-quantity).Error
}
