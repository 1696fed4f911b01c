package shareclasses

import (
	"context"
	"errors"

	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type ShareClassInput struct {
	Name                  string           `json:"name"`
	Description           *string          `json:"description"`
	LiquidationPreference *decimal.Decimal `json:"liquidation_preference"`
	ConversionRatio       *decimal.Decimal `json:"conversion_ratio"`
	IsPreferred           bool             `json:"is_preferred"`
}

func (s *Service) Create(ctx context.Context, in ShareClassInput) (*domain.ShareClass, error) {
	sc := &domain.ShareClass{
		Name:        in.Name,
		Description: in.Description,
		IsPreferred: in.IsPreferred,
	}
	if in.LiquidationPreference != nil {
		sc.LiquidationPreference = *in.LiquidationPreference
	}
	if in.ConversionRatio != nil {
		sc.ConversionRatio = *in.ConversionRatio
	}
	if err := s.DB.WithContext(ctx).Create(sc).Error; err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) List(ctx context.Context) ([]domain.ShareClass, error) {
	var out []domain.ShareClass
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.ShareClass, error) {
	var sc domain.ShareClass
	if err := s.DB.WithContext(ctx).Where("share_class_id = ?", id).First(&sc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareClassNotFound
		}
		return nil, err
	}
	return &sc, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in ShareClassInput) (*domain.ShareClass, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"name":         in.Name,
		"description":  in.Description,
		"is_preferred": in.IsPreferred,
	}
	if in.LiquidationPreference != nil {
		updates["liquidation_preference"] = *in.LiquidationPreference
	}
	if in.ConversionRatio != nil {
		updates["conversion_ratio"] = *in.ConversionRatio
	}
	if err := s.DB.WithContext(ctx).Model(&domain.ShareClass{}).
		Where("share_class_id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete refuses while any holding or option plan references the class.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sc domain.ShareClass
		if err := tx.Where("share_class_id = ?", id).First(&sc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareClassNotFound
			}
			return err
		}
		var holdings int64
		if err := tx.Model(&domain.EquityHolding{}).
			Where("share_class_id = ?", id).Count(&holdings).Error; err != nil {
			return err
		}
		var planRefs int64
		if err := tx.Model(&domain.OptionPlan{}).
			Where("share_class_id = ?", id).Count(&planRefs).Error; err != nil {
			return err
		}
		if holdings > 0 || planRefs > 0 {
			return ErrShareClassInUse
		}
		return tx.Where("share_class_id = ?", id).Delete(&domain.ShareClass{}).Error
	})
}

// WithTotals is a share class plus its issued-share aggregates.
type WithTotals struct {
	domain.ShareClass
	TotalShares      int64 `json:"total_shares"`
	ShareholderCount int64 `json:"shareholder_count"`
}

func (s *Service) GetWithTotals(ctx context.Context, id uuid.UUID) (*WithTotals, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &WithTotals{ShareClass: *sc}
	err = s.DB.WithContext(ctx).Model(&domain.EquityHolding{}).
		Where("share_class_id = ?", id).
		Select("COALESCE(SUM(quantity), 0) AS total_shares, COUNT(DISTINCT shareholder_id) AS shareholder_count").
		Scan(out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListWithTotals(ctx context.Context) ([]WithTotals, error) {
	classes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WithTotals, 0, len(classes))
	for _, sc := range classes {
		row := WithTotals{ShareClass: sc}
		if err := s.DB.WithContext(ctx).Model(&domain.EquityHolding{}).
			Where("share_class_id = ?", sc.ShareClassID).
			Select("COALESCE(SUM(quantity), 0) AS total_shares, COUNT(DISTINCT shareholder_id) AS shareholder_count").
			Scan(&row).Error; err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
