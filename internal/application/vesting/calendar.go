// Package vesting computes the tranche calendar for a stock option grant.
// It is pure date and integer arithmetic with no storage access.
package vesting

import "time"

// Frequency is how often shares vest after the cliff.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annually  Frequency = "annually"
)

func (f Frequency) monthsPerPeriod() int {
	switch f {
	case Quarterly:
		return 3
	case Annually:
		return 12
	case Monthly:
		return 1
	default:
		// Unrecognized values fall back to monthly.
		return 1
	}
}

// Tranche is one vesting event: on Date, Shares shares vest.
type Tranche struct {
	Date   time.Time
	Shares int64
}

// Tranches computes the full vesting calendar for a grant of quantity shares
// starting at start. Shares are integral, so each period takes the floor of
// the proportional amount and the final period absorbs the remainder; the
// sum over all tranches always equals quantity exactly. Tranches that would
// carry zero shares are not emitted. Dates are non-decreasing and all fall
// on or after start.
func Tranches(totalMonths, cliffMonths int, freq Frequency, quantity int64, start time.Time) []Tranche {
	if totalMonths <= 0 || quantity <= 0 {
		return nil
	}
	if cliffMonths < 0 {
		cliffMonths = 0
	}

	// A cliff at or beyond the schedule end leaves no periods after it;
	// the whole grant vests at the cliff date.
	if cliffMonths >= totalMonths {
		return []Tranche{{Date: start.AddDate(0, cliffMonths, 0), Shares: quantity}}
	}

	mpp := freq.monthsPerPeriod()
	periods := (totalMonths - cliffMonths) / mpp
	perPeriod := quantity * int64(mpp) / int64(totalMonths)
	atCliff := quantity * int64(cliffMonths) / int64(totalMonths)

	var out []Tranche
	var vested int64
	if cliffMonths > 0 && atCliff > 0 {
		out = append(out, Tranche{Date: start.AddDate(0, cliffMonths, 0), Shares: atCliff})
		vested = atCliff
	}

	for i := 0; i < periods; i++ {
		shares := perPeriod
		if i == periods-1 {
			shares = quantity - vested
		}
		if shares <= 0 {
			continue
		}
		out = append(out, Tranche{
			Date:   start.AddDate(0, cliffMonths+(i+1)*mpp, 0),
			Shares: shares,
		})
		vested += shares
	}

	// Schedules shorter than one full period (or with a cliff that leaves
	// none) would otherwise strand the unvested remainder; vest it at the
	// schedule end so the sum invariant holds for every input.
	if vested < quantity {
		out = append(out, Tranche{
			Date:   start.AddDate(0, totalMonths, 0),
			Shares: quantity - vested,
		})
	}

	return out
}
