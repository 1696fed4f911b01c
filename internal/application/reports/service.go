// Package reports builds the read-side views of the cap table: ownership
// percentages, option grant summaries and the upcoming vesting calendar.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"captable-backend/internal/application/shareclasses"
	"captable-backend/internal/application/shareholders"
	"captable-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB           *gorm.DB
	Shareholders *shareholders.Service
	ShareClasses *shareclasses.Service
	Cache        *Cache
}

// ShareholderOwnership is one cap-table row.
type ShareholderOwnership struct {
	ShareholderID       uuid.UUID `json:"shareholder_id"`
	Name                string    `json:"name"`
	Type                string    `json:"type"`
	Email               *string   `json:"email"`
	TotalShares         int64     `json:"total_shares"`
	ShareClassCount     int64     `json:"share_class_count"`
	OwnershipPercentage float64   `json:"ownership_percentage"`
}

type CapTableReport struct {
	TotalShares  int64                     `json:"total_shares"`
	Shareholders []ShareholderOwnership    `json:"shareholders"`
	ShareClasses []shareclasses.WithTotals `json:"share_classes"`
}

// CapTable computes ownership percentages over all issued shares, sorted by
// stake descending. Served from cache when fresh.
func (s *Service) CapTable(ctx context.Context) (*CapTableReport, error) {
	var cached CapTableReport
	if s.Cache.get(ctx, capTableKey, &cached) {
		return &cached, nil
	}

	summaries, err := s.Shareholders.EquitySummaries(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.ShareClasses.ListWithTotals(ctx)
	if err != nil {
		return nil, err
	}

	var totalShares int64
	for _, sc := range classes {
		totalShares += sc.TotalShares
	}

	rows := make([]ShareholderOwnership, 0, len(summaries))
	for _, sum := range summaries {
		row := ShareholderOwnership{
			ShareholderID:   sum.ShareholderID,
			Name:            sum.Name,
			Type:            sum.Type,
			Email:           sum.Email,
			TotalShares:     sum.TotalShares,
			ShareClassCount: sum.ShareClassCount,
		}
		if totalShares > 0 {
			pct := float64(sum.TotalShares) / float64(totalShares) * 100
			// Four decimal places, matching the exported report.
			row.OwnershipPercentage, _ = strconv.ParseFloat(fmt.Sprintf("%.4f", pct), 64)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OwnershipPercentage > rows[j].OwnershipPercentage
	})

	report := &CapTableReport{
		TotalShares:  totalShares,
		Shareholders: rows,
		ShareClasses: classes,
	}
	s.Cache.set(ctx, capTableKey, report)
	return report, nil
}

type OptionGrantsSummary struct {
	TotalActive    int64 `json:"total_active"`
	TotalExercised int64 `json:"total_exercised"`
	TotalCancelled int64 `json:"total_cancelled"`
	TotalExpired   int64 `json:"total_expired"`
	TotalAll       int64 `json:"total_all"`
}

type OptionGrantsReport struct {
	Options []domain.StockOption `json:"options"`
	Summary OptionGrantsSummary  `json:"summary"`
}

// OptionGrants lists all grants with share totals per status.
func (s *Service) OptionGrants(ctx context.Context) (*OptionGrantsReport, error) {
	var opts []domain.StockOption
	if err := s.DB.WithContext(ctx).Order("grant_date DESC").Find(&opts).Error; err != nil {
		return nil, err
	}
	report := &OptionGrantsReport{Options: opts}
	for _, o := range opts {
		switch o.Status {
		case domain.OptionStatusActive:
			report.Summary.TotalActive += o.Quantity
		case domain.OptionStatusExercised:
			report.Summary.TotalExercised += o.Quantity
		case domain.OptionStatusCancelled:
			report.Summary.TotalCancelled += o.Quantity
		case domain.OptionStatusExpired:
			report.Summary.TotalExpired += o.Quantity
		}
		report.Summary.TotalAll += o.Quantity
	}
	return report, nil
}

// UpcomingVestingEvent is a pending tranche on an active grant.
type UpcomingVestingEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	VestingDate     time.Time `json:"vesting_date"`
	SharesVested    int64     `json:"shares_vested"`
	OptionID        uuid.UUID `json:"option_id"`
	ShareholderID   uuid.UUID `json:"shareholder_id"`
	ShareholderName string    `json:"shareholder_name"`
	OptionPlanID    uuid.UUID `json:"option_plan_id"`
	OptionPlanName  string    `json:"option_plan_name"`
}

type VestingReport struct {
	UpcomingEvents []UpcomingVestingEvent            `json:"upcoming_events"`
	EventsByMonth  map[string][]UpcomingVestingEvent `json:"events_by_month"`
}

// UpcomingVesting returns the next pending tranches on active grants from
// asOf forward, capped at 100, grouped by YYYY-MM month.
func (s *Service) UpcomingVesting(ctx context.Context, asOf time.Time) (*VestingReport, error) {
	var events []UpcomingVestingEvent
	err := s.DB.WithContext(ctx).
		Table("option_vesting_events ove").
		Select("ove.event_id, ove.vesting_date, ove.shares_vested, so.option_id, sh.shareholder_id, sh.name AS shareholder_name, op.plan_id AS option_plan_id, op.name AS option_plan_name").
		Joins("JOIN stock_options so ON so.option_id = ove.stock_option_id").
		Joins("JOIN shareholders sh ON sh.shareholder_id = so.shareholder_id").
		Joins("JOIN option_plans op ON op.plan_id = so.option_plan_id").
		Where("so.status = ? AND ove.vesting_date >= ?", domain.OptionStatusActive, asOf).
		Order("ove.vesting_date ASC").
		Limit(100).
		Scan(&events).Error
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string][]UpcomingVestingEvent)
	for _, e := range events {
		month := e.VestingDate.Format("2006-01")
		byMonth[month] = append(byMonth[month], e)
	}
	return &VestingReport{UpcomingEvents: events, EventsByMonth: byMonth}, nil
}

// CapTableCSV renders the cap table as CSV for download.
func (s *Service) CapTableCSV(ctx context.Context) ([]byte, error) {
	report, err := s.CapTable(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Shareholder ID", "Name", "Type", "Email", "Total Shares", "Ownership %"}); err != nil {
		return nil, err
	}
	for _, row := range report.Shareholders {
		email := ""
		if row.Email != nil {
			email = *row.Email
		}
		record := []string{
			row.ShareholderID.String(),
			row.Name,
			row.Type,
			email,
			strconv.FormatInt(row.TotalShares, 10),
			strconv.FormatFloat(row.OwnershipPercentage, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
