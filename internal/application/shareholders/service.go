package shareholders

import (
	"context"
	"errors"
	"strings"

	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type ShareholderInput struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id"`
	Notes   *string `json:"notes"`
}

func (s *Service) Create(ctx context.Context, in ShareholderInput) (*domain.Shareholder, error) {
	sh := &domain.Shareholder{
		Name:    strings.TrimSpace(in.Name),
		Type:    in.Type,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		TaxID:   in.TaxID,
		Notes:   in.Notes,
	}
	sh.Type = normalizeType(sh.Type)
	if err := s.DB.WithContext(ctx).Create(sh).Error; err != nil {
		return nil, err
	}
	return sh, nil
}

// ListFilter narrows List; Search matches name or email substrings.
type ListFilter struct {
	Type   *string
	Search *string
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Shareholder, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Shareholder{})
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	var out []domain.Shareholder
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Shareholder, error) {
	var sh domain.Shareholder
	if err := s.DB.WithContext(ctx).Where("shareholder_id = ?", id).First(&sh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareholderNotFound
		}
		return nil, err
	}
	return &sh, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in ShareholderInput) (*domain.Shareholder, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&domain.Shareholder{}).
		Where("shareholder_id = ?", id).
		Updates(map[string]interface{}{
			"name":    strings.TrimSpace(in.Name),
			"type":    normalizeType(in.Type),
			"email":   in.Email,
			"phone":   in.Phone,
			"address": in.Address,
			"tax_id":  in.TaxID,
			"notes":   in.Notes,
		}).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// normalizeType coerces anything outside the known set to "other".
func normalizeType(t string) string {
	switch t {
	case domain.ShareholderFounder, domain.ShareholderInvestor, domain.ShareholderEmployee:
		return t
	default:
		return domain.ShareholderOther
	}
}

// Delete refuses while holdings or grants still reference the shareholder;
// deleting would orphan ledger history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sh domain.Shareholder
		if err := tx.Where("shareholder_id = ?", id).First(&sh).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareholderNotFound
			}
			return err
		}
		var holdings int64
		if err := tx.Model(&domain.EquityHolding{}).
			Where("shareholder_id = ?", id).Count(&holdings).Error; err != nil {
			return err
		}
		var grants int64
		if err := tx.Model(&domain.StockOption{}).
			Where("shareholder_id = ?", id).Count(&grants).Error; err != nil {
			return err
		}
		if holdings > 0 || grants > 0 {
			return ErrShareholderInUse
		}
		return tx.Where("shareholder_id = ?", id).Delete(&domain.Shareholder{}).Error
	})
}

// WithEquity is a shareholder plus their current holdings and share total.
type WithEquity struct {
	domain.Shareholder
	TotalShares int64                  `json:"total_shares"`
	Holdings    []domain.EquityHolding `json:"equity_holdings"`
}

func (s *Service) GetWithEquity(ctx context.Context, id uuid.UUID) (*WithEquity, error) {
	sh, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var holdings []domain.EquityHolding
	if err := s.DB.WithContext(ctx).
		Where("shareholder_id = ?", id).
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	out := &WithEquity{Shareholder: *sh, Holdings: holdings}
	for _, h := range holdings {
		out.TotalShares += h.Quantity
	}
	return out, nil
}

// EquitySummary is one cap-table row before ownership percentages.
type EquitySummary struct {
	ShareholderID   uuid.UUID `json:"shareholder_id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Email           *string   `json:"email"`
	TotalShares     int64     `json:"total_shares"`
	ShareClassCount int64     `json:"share_class_count"`
}

// EquitySummaries aggregates current share totals per shareholder,
// including shareholders with no holdings.
func (s *Service) EquitySummaries(ctx context.Context) ([]EquitySummary, error) {
	var out []EquitySummary
	err := s.DB.WithContext(ctx).
		Table("shareholders s").
		Select("s.shareholder_id, s.name, s.type, s.email, COALESCE(SUM(eh.quantity), 0) AS total_shares, COUNT(DISTINCT eh.share_class_id) AS share_class_count").
		Joins("LEFT JOIN equity_holdings eh ON eh.shareholder_id = s.shareholder_id").
		Group("s.shareholder_id, s.name, s.type, s.email").
		Order("s.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
