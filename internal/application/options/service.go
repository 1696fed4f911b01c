// Package options drives the stock option lifecycle: granting against a
// plan's reservation pool, generating the vesting calendar, and validating
// exercises and cancellations against vested and exercised totals. Every
// multi-step operation runs as one transaction.
package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"captable-backend/internal/application/equity"
	"captable-backend/internal/application/plans"
	"captable-backend/internal/application/vesting"
	"captable-backend/internal/domain"
	"captable-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateOptionInput struct {
	OptionPlanID      uuid.UUID       `json:"option_plan_id"`
	ShareholderID     uuid.UUID       `json:"shareholder_id"`
	VestingScheduleID uuid.UUID       `json:"vesting_schedule_id"`
	GrantDate         time.Time       `json:"grant_date"`
	ExpirationDate    time.Time       `json:"expiration_date"`
	Quantity          int64           `json:"quantity"`
	ExercisePrice     decimal.Decimal `json:"exercise_price"`
	VestingStartDate  time.Time       `json:"vesting_start_date"`
	Notes             *string         `json:"notes"`
	ActorEmail        *string         `json:"-"`
}

// Create grants an option: reserves shares on the plan, inserts the grant
// and its full vesting calendar, and appends a GRANTED event. If any step
// fails the plan counter, grant and events all roll back together.
func (s *Service) Create(ctx context.Context, in CreateOptionInput) (*domain.StockOption, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var created domain.StockOption
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shareholder domain.Shareholder
		if err := tx.Where("shareholder_id = ?", in.ShareholderID).First(&shareholder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareholderNotFound
			}
			return err
		}
		var schedule domain.VestingSchedule
		if err := tx.Where("schedule_id = ?", in.VestingScheduleID).First(&schedule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		plan, err := plans.Reserve(tx, in.OptionPlanID, in.Quantity)
		if err != nil {
			return err
		}

		created = domain.StockOption{
			OptionPlanID:      in.OptionPlanID,
			ShareholderID:     in.ShareholderID,
			VestingScheduleID: in.VestingScheduleID,
			GrantDate:         in.GrantDate,
			ExpirationDate:    in.ExpirationDate,
			Quantity:          in.Quantity,
			ExercisePrice:     in.ExercisePrice,
			VestingStartDate:  in.VestingStartDate,
			Status:            domain.OptionStatusActive,
			Notes:             in.Notes,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		tranches := vesting.Tranches(
			schedule.TotalDurationMonths,
			schedule.CliffMonths,
			vesting.Frequency(schedule.Frequency),
			in.Quantity,
			in.VestingStartDate,
		)
		events := make([]domain.OptionVestingEvent, 0, len(tranches))
		for _, tr := range tranches {
			events = append(events, domain.OptionVestingEvent{
				StockOptionID: created.OptionID,
				VestingDate:   tr.Date,
				SharesVested:  tr.Shares,
			})
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}

		return appendEvent(tx, created.OptionID, domain.OptionEventGranted, in.ActorEmail, map[string]interface{}{
			"quantity":         in.Quantity,
			"option_plan_id":   plan.PlanID,
			"shares_available": plan.SharesAvailable(),
			"vesting_events":   len(events),
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Cancel flips an active grant to cancelled and returns its unexercised
// shares to the plan. Shares already exercised stayed with the shareholder
// as equity, so only quantity minus exercised goes back. A second cancel,
// or cancelling an exercised/expired grant, fails with ErrOptionNotActive.
func (s *Service) Cancel(ctx context.Context, optionID uuid.UUID, actorEmail *string) (*domain.StockOption, error) {
	var opt domain.StockOption
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("option_id = ?", optionID).First(&opt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOptionNotFound
			}
			return err
		}
		if opt.Status != domain.OptionStatusActive {
			return ErrOptionNotActive
		}

		exercised, err := exercisedTotal(tx, optionID)
		if err != nil {
			return err
		}

		if err := tx.Model(&domain.StockOption{}).
			Where("option_id = ?", optionID).
			Update("status", domain.OptionStatusCancelled).Error; err != nil {
			return err
		}
		opt.Status = domain.OptionStatusCancelled

		released := opt.Quantity - exercised
		if released > 0 {
			if err := plans.Release(tx, opt.OptionPlanID, released); err != nil {
				return err
			}
		}

		return appendEvent(tx, optionID, domain.OptionEventCancelled, actorEmail, map[string]interface{}{
			"released_shares":  released,
			"exercised_shares": exercised,
		})
	})
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

type ExerciseInput struct {
	ExerciseDate    time.Time `json:"exercise_date"`
	SharesExercised int64     `json:"shares_exercised"`
	Notes           *string   `json:"notes"`
	ActorEmail      *string   `json:"-"`
}

// Exercise converts vested option shares into equity. The option row is
// locked for the whole check-then-write sequence, so two concurrent
// exercises that would jointly exceed the vested allowance serialize and
// the second one fails its check. On success the exercise record, the
// ledger transaction and the holding update commit together.
func (s *Service) Exercise(ctx context.Context, optionID uuid.UUID, in ExerciseInput) (*domain.OptionExercise, error) {
	if in.SharesExercised <= 0 {
		return nil, ErrInvalidQuantity
	}

	var record domain.OptionExercise
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var opt domain.StockOption
		if err := database.LockForUpdate(tx).
			Where("option_id = ?", optionID).First(&opt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOptionNotFound
			}
			return err
		}
		if opt.Status != domain.OptionStatusActive {
			return ErrOptionNotActive
		}

		var vested int64
		if err := tx.Model(&domain.OptionVestingEvent{}).
			Where("stock_option_id = ? AND vesting_date <= ?", optionID, in.ExerciseDate).
			Select("COALESCE(SUM(shares_vested), 0)").
			Scan(&vested).Error; err != nil {
			return err
		}
		if vested < in.SharesExercised {
			return &InsufficientVestedSharesError{Vested: vested, Requested: in.SharesExercised}
		}

		exercised, err := exercisedTotal(tx, optionID)
		if err != nil {
			return err
		}
		if exercised+in.SharesExercised > opt.Quantity {
			return &ExerciseExceedsGrantError{
				AlreadyExercised: exercised,
				Requested:        in.SharesExercised,
				GrantQuantity:    opt.Quantity,
			}
		}

		record = domain.OptionExercise{
			StockOptionID:   optionID,
			ExerciseDate:    in.ExerciseDate,
			SharesExercised: in.SharesExercised,
			ExercisePrice:   opt.ExercisePrice,
			Notes:           in.Notes,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if exercised+in.SharesExercised >= opt.Quantity {
			if err := tx.Model(&domain.StockOption{}).
				Where("option_id = ?", optionID).
				Update("status", domain.OptionStatusExercised).Error; err != nil {
				return err
			}
		}

		var plan domain.OptionPlan
		if err := tx.Where("plan_id = ?", opt.OptionPlanID).First(&plan).Error; err != nil {
			return err
		}

		txNote := fmt.Sprintf("Option exercise from grant %s", opt.OptionID)
		if err := equity.Record(tx, domain.TransactionExercise, opt.ShareholderID, plan.ShareClassID,
			in.SharesExercised, opt.ExercisePrice, in.ExerciseDate, &txNote); err != nil {
			return err
		}

		cert := fmt.Sprintf("EX-%d", time.Now().UnixMilli())
		holdingNote := fmt.Sprintf("From option exercise %s", opt.OptionID)
		if _, err := equity.ApplyHoldingDelta(tx, opt.ShareholderID, plan.ShareClassID, in.SharesExercised, equity.HoldingRef{
			PricePerShare:     opt.ExercisePrice,
			IssueDate:         in.ExerciseDate,
			CertificateNumber: &cert,
			Notes:             &holdingNote,
		}); err != nil {
			return err
		}

		return appendEvent(tx, optionID, domain.OptionEventExercised, in.ActorEmail, map[string]interface{}{
			"shares_exercised": in.SharesExercised,
			"exercise_date":    in.ExerciseDate.Format("2006-01-02"),
			"total_exercised":  exercised + in.SharesExercised,
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateOptionInput is the administrative status/notes patch. It bypasses
// the state machine on purpose (manual correction path); cancel and
// exercise are the validated transitions.
type UpdateOptionInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (s *Service) Update(ctx context.Context, optionID uuid.UUID, in UpdateOptionInput) (*domain.StockOption, error) {
	if _, err := s.Get(ctx, optionID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&domain.StockOption{}).
			Where("option_id = ?", optionID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, optionID)
}

func (s *Service) Get(ctx context.Context, optionID uuid.UUID) (*domain.StockOption, error) {
	var opt domain.StockOption
	if err := s.DB.WithContext(ctx).Where("option_id = ?", optionID).First(&opt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}
	return &opt, nil
}

// ListFilter narrows List; nil fields match everything.
type ListFilter struct {
	Status        *string
	ShareholderID *uuid.UUID
	OptionPlanID  *uuid.UUID
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.StockOption, error) {
	q := s.DB.WithContext(ctx).Model(&domain.StockOption{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ShareholderID != nil {
		q = q.Where("shareholder_id = ?", *f.ShareholderID)
	}
	if f.OptionPlanID != nil {
		q = q.Where("option_plan_id = ?", *f.OptionPlanID)
	}
	var opts []domain.StockOption
	if err := q.Order("grant_date DESC").Find(&opts).Error; err != nil {
		return nil, err
	}
	return opts, nil
}

// VestingDetails returns a grant's tranche calendar in date order.
func (s *Service) VestingDetails(ctx context.Context, optionID uuid.UUID) ([]domain.OptionVestingEvent, error) {
	if _, err := s.Get(ctx, optionID); err != nil {
		return nil, err
	}
	var events []domain.OptionVestingEvent
	if err := s.DB.WithContext(ctx).
		Where("stock_option_id = ?", optionID).
		Order("vesting_date ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ExerciseHistory returns a grant's exercises in date order.
func (s *Service) ExerciseHistory(ctx context.Context, optionID uuid.UUID) ([]domain.OptionExercise, error) {
	if _, err := s.Get(ctx, optionID); err != nil {
		return nil, err
	}
	var exercises []domain.OptionExercise
	if err := s.DB.WithContext(ctx).
		Where("stock_option_id = ?", optionID).
		Order("exercise_date ASC").
		Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

// VestedAsOf sums the shares vested on or before asOf.
func (s *Service) VestedAsOf(ctx context.Context, optionID uuid.UUID, asOf time.Time) (int64, error) {
	var vested int64
	err := s.DB.WithContext(ctx).Model(&domain.OptionVestingEvent{}).
		Where("stock_option_id = ? AND vesting_date <= ?", optionID, asOf).
		Select("COALESCE(SUM(shares_vested), 0)").
		Scan(&vested).Error
	return vested, err
}

func exercisedTotal(tx *gorm.DB, optionID uuid.UUID) (int64, error) {
	var total int64
	err := tx.Model(&domain.OptionExercise{}).
		Where("stock_option_id = ?", optionID).
		Select("COALESCE(SUM(shares_exercised), 0)").
		Scan(&total).Error
	return total, err
}

func appendEvent(tx *gorm.DB, optionID uuid.UUID, eventType string, actorEmail *string, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&domain.OptionEvent{
		StockOptionID: optionID,
		EventType:     eventType,
		ActorEmail:    actorEmail,
		EventData:     datatypes.JSON(data),
	}).Error
}
