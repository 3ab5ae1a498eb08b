// Package analysis is the derived-metrics engine: pure functions that
// turn raw transactions and a profile into health scores, and health
// scores plus feeding recency into the pet's mood. Everything here is
// deterministic given identical inputs.
package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

const (
	// ImpulseThreshold is the impulse-purchase count at which the
	// impulse score bottoms out at 50.
	ImpulseThreshold = 5

	// SpendWindowDays is the trailing window for total-spend math.
	SpendWindowDays = 30

	neverFedPenalty = 15
	staleFedPenalty = 20 // more than 24h since last fed
	lateFedPenalty  = 10 // more than 12h since last fed
)

// DefaultImpulseMerchants is the built-in impulse merchant allow-list,
// overridable through configuration.
var DefaultImpulseMerchants = []string{
	"Steam",
	"Amazon",
	"DoorDash",
	"Uber Eats",
	"StockX",
	"SHEIN",
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// TotalSpent sums outgoing transaction amounts within the trailing
// window ending at now.
func TotalSpent(txs []domain.Transaction, now time.Time, window time.Duration) float64 {
	cutoff := now.Add(-window)
	var total float64
	for _, tx := range txs {
		if tx.IsIncoming {
			continue
		}
		if tx.Date.Before(cutoff) || tx.Date.After(now) {
			continue
		}
		total += tx.Amount
	}
	return total
}

// countImpulse counts outgoing transactions whose merchant is on the
// impulse allow-list (case-insensitive).
func countImpulse(txs []domain.Transaction, merchants []string) int {
	count := 0
	for _, tx := range txs {
		if tx.IsIncoming {
			continue
		}
		for _, m := range merchants {
			if strings.EqualFold(tx.Merchant, m) {
				count++
				break
			}
		}
	}
	return count
}

// ComputeHealthMetrics derives the four health scores from the
// transaction set and profile, as of now.
func ComputeHealthMetrics(txs []domain.Transaction, profile domain.UserProfile, impulseMerchants []string, now time.Time) domain.HealthMetrics {
	spent := TotalSpent(txs, now, SpendWindowDays*24*time.Hour)

	var adherence int
	switch {
	case profile.MonthlyBudget > 0:
		adherence = clamp(((profile.MonthlyBudget-spent)/profile.MonthlyBudget)*100 + 50)
	case spent == 0:
		adherence = 100
	default:
		adherence = 0
	}

	estimatedIncome := profile.MonthlyBudget + profile.MonthlySavingsGoal
	actualSavings := estimatedIncome - spent
	var savingsRate int
	switch {
	case profile.MonthlySavingsGoal > 0:
		savingsRate = clamp((actualSavings / profile.MonthlySavingsGoal) * 50)
	case actualSavings >= 0:
		savingsRate = 50
	default:
		savingsRate = 0
	}

	impulseCount := countImpulse(txs, impulseMerchants)
	impulseScore := clamp(100 - (float64(impulseCount)/ImpulseThreshold)*50)

	overall := clamp(float64(adherence)*0.4 + float64(savingsRate)*0.3 + float64(impulseScore)*0.3)

	return domain.HealthMetrics{
		BudgetAdherence: adherence,
		SavingsRate:     savingsRate,
		ImpulseScore:    impulseScore,
		OverallScore:    overall,
	}
}

// Happiness discounts the overall score by feeding recency: never fed
// costs 15 points, more than 24h costs 20, more than 12h costs 10.
// The result is floored at 0.
func Happiness(metrics domain.HealthMetrics, lastFed *time.Time, now time.Time) int {
	h := metrics.OverallScore
	switch {
	case lastFed == nil:
		h -= neverFedPenalty
	case now.Sub(*lastFed) > 24*time.Hour:
		h -= staleFedPenalty
	case now.Sub(*lastFed) > 12*time.Hour:
		h -= lateFedPenalty
	}
	if h < 0 {
		h = 0
	}
	return h
}

// MoodFor discretizes happiness into the four moods. Bands are closed
// at their lower bound.
func MoodFor(happiness int) domain.Mood {
	switch {
	case happiness >= 80:
		return domain.MoodHappy
	case happiness >= 60:
		return domain.MoodContent
	case happiness >= 40:
		return domain.MoodWorried
	default:
		return domain.MoodSad
	}
}

// ComputeScottyState recomputes the pet state from metrics and feeding
// recency, preserving lastFed and foodCredits from the previous state.
func ComputeScottyState(metrics domain.HealthMetrics, prev domain.ScottyState, now time.Time) domain.ScottyState {
	happiness := Happiness(metrics, prev.LastFed, now)
	return domain.ScottyState{
		Mood:        MoodFor(happiness),
		Happiness:   happiness,
		LastFed:     prev.LastFed,
		FoodCredits: prev.FoodCredits,
	}
}
