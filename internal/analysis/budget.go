package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

// Budget period math. The day-count convention is calendar days in the
// current month, applied uniformly to the daily-limit derivation and
// the end-of-period projection.

func daysInMonth(now time.Time) int {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// DaysInPeriod returns the number of days a budget frequency spans,
// as of now.
func DaysInPeriod(freq domain.Frequency, now time.Time) int {
	switch freq {
	case domain.FrequencyDay:
		return 1
	case domain.FrequencyWeek:
		return 7
	case domain.FrequencyYear:
		return 365
	default: // month
		return daysInMonth(now)
	}
}

// DailyLimit normalizes a budget's limit to a per-day rate.
func DailyLimit(b domain.BudgetItem, now time.Time) float64 {
	days := DaysInPeriod(b.Frequency, now)
	return math.Round(b.LimitAmount/float64(days)*100) / 100
}

// BudgetSpent recomputes a budget's spent from the transaction set,
// filtered to the budget's rolling period ending at now and matched on
// category.
func BudgetSpent(b domain.BudgetItem, txs []domain.Transaction, now time.Time) float64 {
	window := time.Duration(DaysInPeriod(b.Frequency, now)) * 24 * time.Hour
	cutoff := now.Add(-window)
	cat := domain.ParseCategory(b.Category)

	var spent float64
	for _, tx := range txs {
		if tx.IsIncoming {
			continue
		}
		if tx.Date.Before(cutoff) || tx.Date.After(now) {
			continue
		}
		if tx.Category != cat && !strings.EqualFold(string(tx.Category), b.Category) {
			continue
		}
		spent += tx.Amount
	}
	return math.Round(spent*100) / 100
}

// ProjectedSpent extrapolates current spend to the end of the month.
// The elapsed fraction is floored at 0.1 so a near-zero divisor at
// month start cannot blow up the projection.
func ProjectedSpent(currentSpent float64, now time.Time) float64 {
	elapsed := float64(now.Day()) / float64(daysInMonth(now))
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	return currentSpent / elapsed
}

// OverProjected reports whether the budget is on track to exceed its
// limit by the end of the period.
func OverProjected(b domain.BudgetItem, now time.Time) bool {
	return ProjectedSpent(b.Spent, now) > b.LimitAmount
}

// RefreshBudget derives the computed fields of a budget against the
// freshest transactions.
func RefreshBudget(b domain.BudgetItem, txs []domain.Transaction, now time.Time) domain.BudgetItem {
	b.DerivedDailyLimit = DailyLimit(b, now)
	b.Spent = BudgetSpent(b, txs, now)
	return b
}
