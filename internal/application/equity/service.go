// Package equity keeps the transaction ledger and the holding snapshots it
// rolls up into. Every quantity change writes both inside one transaction;
// the ledger row and the holding row never diverge.
package equity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"captable-backend/internal/domain"
	"captable-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// Record appends an equity transaction inside the caller's transaction.
// The ledger is append-only; there is no update or delete counterpart.
func Record(tx *gorm.DB, txType string, shareholderID, shareClassID uuid.UUID, quantity int64, price decimal.Decimal, date time.Time, notes *string) error {
	return tx.Create(&domain.EquityTransaction{
		TransactionType: txType,
		ShareholderID:   shareholderID,
		ShareClassID:    shareClassID,
		Quantity:        quantity,
		PricePerShare:   price,
		TransactionDate: date,
		Notes:           notes,
	}).Error
}

// HoldingRef supplies the fields for a holding created on first credit.
type HoldingRef struct {
	PricePerShare     decimal.Decimal
	IssueDate         time.Time
	CertificateNumber *string
	Notes             *string
}

// ApplyHoldingDelta adjusts the (shareholder, share class) holding by delta
// inside the caller's transaction, creating the row on first credit. The
// existing row is locked before the read so concurrent adjustments
// serialize. A decrement below zero fails with ErrNegativeHoldingQuantity.
func ApplyHoldingDelta(tx *gorm.DB, shareholderID, shareClassID uuid.UUID, delta int64, ref HoldingRef) (*domain.EquityHolding, error) {
	var holding domain.EquityHolding
	err := database.LockForUpdate(tx).
		Where("shareholder_id = ? AND share_class_id = ?", shareholderID, shareClassID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if delta < 0 {
			return nil, ErrNegativeHoldingQuantity
		}
		holding = domain.EquityHolding{
			ShareholderID:     shareholderID,
			ShareClassID:      shareClassID,
			Quantity:          delta,
			PricePerShare:     ref.PricePerShare,
			IssueDate:         ref.IssueDate,
			CertificateNumber: ref.CertificateNumber,
			Notes:             ref.Notes,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return nil, err
		}
		return &holding, nil
	}
	if err != nil {
		return nil, err
	}

	newQuantity := holding.Quantity + delta
	if newQuantity < 0 {
		return nil, ErrNegativeHoldingQuantity
	}
	holding.Quantity = newQuantity
	if err := tx.Model(&domain.EquityHolding{}).
		Where("holding_id = ?", holding.HoldingID).
		Update("quantity", newQuantity).Error; err != nil {
		return nil, err
	}
	return &holding, nil
}

type CreateHoldingInput struct {
	ShareholderID     uuid.UUID       `json:"shareholder_id"`
	ShareClassID      uuid.UUID       `json:"share_class_id"`
	Quantity          int64           `json:"quantity"`
	PricePerShare     decimal.Decimal `json:"price_per_share"`
	IssueDate         time.Time       `json:"issue_date"`
	CertificateNumber *string         `json:"certificate_number"`
	Notes             *string         `json:"notes"`
}

// CreateHolding records a manual issuance: the holding row and its issuance
// transaction are written together.
func (s *Service) CreateHolding(ctx context.Context, in CreateHoldingInput) (*domain.EquityHolding, error) {
	if in.Quantity < 0 {
		return nil, ErrNegativeHoldingQuantity
	}
	var holding *domain.EquityHolding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shareholder domain.Shareholder
		if err := tx.Where("shareholder_id = ?", in.ShareholderID).First(&shareholder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareholderNotFound
			}
			return err
		}
		var shareClass domain.ShareClass
		if err := tx.Where("share_class_id = ?", in.ShareClassID).First(&shareClass).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareClassNotFound
			}
			return err
		}

		h, err := ApplyHoldingDelta(tx, in.ShareholderID, in.ShareClassID, in.Quantity, HoldingRef{
			PricePerShare:     in.PricePerShare,
			IssueDate:         in.IssueDate,
			CertificateNumber: in.CertificateNumber,
			Notes:             in.Notes,
		})
		if err != nil {
			return err
		}
		holding = h
		if in.Quantity == 0 {
			// Placeholder row with no shares; the ledger only records movement.
			return nil
		}
		return Record(tx, domain.TransactionIssuance, in.ShareholderID, in.ShareClassID, in.Quantity, in.PricePerShare, in.IssueDate, in.Notes)
	})
	if err != nil {
		return nil, err
	}
	return holding, nil
}

type UpdateHoldingInput struct {
	Quantity          int64           `json:"quantity"`
	PricePerShare     decimal.Decimal `json:"price_per_share"`
	IssueDate         time.Time       `json:"issue_date"`
	CertificateNumber *string         `json:"certificate_number"`
	Notes             *string         `json:"notes"`
}

// UpdateHolding rewrites a holding's fields. A quantity change also appends
// the matching ledger row: issuance when shares were added, repurchase when
// removed, dated today.
func (s *Service) UpdateHolding(ctx context.Context, holdingID uuid.UUID, in UpdateHoldingInput) (*domain.EquityHolding, error) {
	if in.Quantity < 0 {
		return nil, ErrNegativeHoldingQuantity
	}
	var updated domain.EquityHolding
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding domain.EquityHolding
		if err := database.LockForUpdate(tx).
			Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHoldingNotFound
			}
			return err
		}

		delta := in.Quantity - holding.Quantity
		if err := tx.Model(&domain.EquityHolding{}).
			Where("holding_id = ?", holdingID).
			Updates(map[string]interface{}{
				"quantity":           in.Quantity,
				"price_per_share":    in.PricePerShare,
				"issue_date":         in.IssueDate,
				"certificate_number": in.CertificateNumber,
				"notes":              in.Notes,
			}).Error; err != nil {
			return err
		}

		if delta != 0 {
			txType := domain.TransactionIssuance
			quantity := delta
			if delta < 0 {
				txType = domain.TransactionRepurchase
				quantity = -delta
			}
			note := fmt.Sprintf("Update to holding %s", holdingID)
			if err := Record(tx, txType, holding.ShareholderID, holding.ShareClassID, quantity, in.PricePerShare, today(), &note); err != nil {
				return err
			}
		}

		return tx.Where("holding_id = ?", holdingID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteHolding removes a holding and records a cancellation transaction
// for its full quantity in the same transaction.
func (s *Service) DeleteHolding(ctx context.Context, holdingID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding domain.EquityHolding
		if err := database.LockForUpdate(tx).
			Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHoldingNotFound
			}
			return err
		}
		note := fmt.Sprintf("Deleted holding %s", holdingID)
		if err := Record(tx, domain.TransactionCancellation, holding.ShareholderID, holding.ShareClassID, holding.Quantity, holding.PricePerShare, today(), &note); err != nil {
			return err
		}
		return tx.Where("holding_id = ?", holdingID).Delete(&domain.EquityHolding{}).Error
	})
}

// HoldingFilter narrows ListHoldings.
type HoldingFilter struct {
	ShareholderID *uuid.UUID
	ShareClassID  *uuid.UUID
}

func (s *Service) ListHoldings(ctx context.Context, f HoldingFilter) ([]domain.EquityHolding, error) {
	q := s.DB.WithContext(ctx).Model(&domain.EquityHolding{})
	if f.ShareholderID != nil {
		q = q.Where("shareholder_id = ?", *f.ShareholderID)
	}
	if f.ShareClassID != nil {
		q = q.Where("share_class_id = ?", *f.ShareClassID)
	}
	var holdings []domain.EquityHolding
	if err := q.Order("issue_date DESC").Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

func (s *Service) GetHolding(ctx context.Context, holdingID uuid.UUID) (*domain.EquityHolding, error) {
	var holding domain.EquityHolding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", holdingID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldingNotFound
		}
		return nil, err
	}
	return &holding, nil
}

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	ShareholderID   *uuid.UUID
	ShareClassID    *uuid.UUID
	TransactionType *string
}

func (s *Service) ListTransactions(ctx context.Context, f TransactionFilter) ([]domain.EquityTransaction, error) {
	q := s.DB.WithContext(ctx).Model(&domain.EquityTransaction{})
	if f.ShareholderID != nil {
		q = q.Where("shareholder_id = ?", *f.ShareholderID)
	}
	if f.ShareClassID != nil {
		q = q.Where("share_class_id = ?", *f.ShareClassID)
	}
	if f.TransactionType != nil {
		q = q.Where("transaction_type = ?", *f.TransactionType)
	}
	var txs []domain.EquityTransaction
	if err := q.Order("transaction_date DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
