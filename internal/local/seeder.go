// Package local produces the zero-network baseline state and the
// fallback behaviors used whenever the backend is unreachable: a
// sample transaction history, default achievements, a local daily
// insight, and a heuristic chat responder.
package local

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/analysis"
	"github.com/scottyfin/scotty-core-go/internal/domain"

	"github.com/google/uuid"
)

// Seeder builds a complete, presentable state with zero network
// dependency.
type Seeder struct {
	impulseMerchants []string
	rng              *rand.Rand
}

// NewSeeder creates a seeder. The rng only affects which sample rows
// are emitted; every derived number is a pure function of the rows.
func NewSeeder(impulseMerchants []string, seed int64) *Seeder {
	return &Seeder{
		impulseMerchants: impulseMerchants,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// Seed is the immediately-usable baseline state.
type Seed struct {
	Profile      domain.UserProfile
	Transactions []domain.Transaction
	Metrics      domain.HealthMetrics
	Scotty       domain.ScottyState
	Achievements []domain.Achievement
	Insight      string
}

type sampleMerchant struct {
	name     string
	category domain.Category
	min, max float64
}

var sampleMerchants = []sampleMerchant{
	{"Chipotle", domain.CategoryFoodDining, 9, 24},
	{"Subway", domain.CategoryFoodDining, 7, 15},
	{"Aldi", domain.CategoryGroceries, 25, 110},
	{"Trader Joe's", domain.CategoryGroceries, 20, 85},
	{"Uber", domain.CategoryTransport, 8, 35},
	{"Shell", domain.CategoryTransport, 30, 60},
	{"AMC Theatres", domain.CategoryEntertainment, 12, 40},
	{"Steam", domain.CategoryEntertainment, 5, 60},
	{"Amazon", domain.CategoryShopping, 10, 120},
	{"Target", domain.CategoryShopping, 15, 90},
	{"Netflix", domain.CategorySubscriptions, 15.99, 15.99},
	{"Spotify", domain.CategorySubscriptions, 11.99, 11.99},
	{"City Utilities", domain.CategoryUtilities, 60, 140},
	{"CVS Pharmacy", domain.CategoryHealth, 8, 45},
}

// defaultProfile is the baseline until a remote profile fetch replaces
// it wholesale.
var defaultProfile = domain.UserProfile{
	MonthlyBudget:      2000,
	MonthlySavingsGoal: 500,
	CurrentBalance:     3250,
}

// Build seeds the full baseline state as of now.
func (s *Seeder) Build(now time.Time) Seed {
	txs := s.GenerateTransactionHistory(now)
	metrics := analysis.ComputeHealthMetrics(txs, defaultProfile, s.impulseMerchants, now)

	scotty := domain.ScottyState{FoodCredits: 10}
	scotty = analysis.ComputeScottyState(metrics, scotty, now)

	return Seed{
		Profile:      defaultProfile,
		Transactions: txs,
		Metrics:      metrics,
		Scotty:       scotty,
		Achievements: s.Achievements(txs, now),
		Insight:      s.Insight(txs, metrics, now),
	}
}

// GenerateTransactionHistory emits a plausible ~30-day sample history.
// Row ids are random; everything computed from the rows is not.
func (s *Seeder) GenerateTransactionHistory(now time.Time) []domain.Transaction {
	count := 20 + s.rng.Intn(15)
	txs := make([]domain.Transaction, 0, count+1)

	for i := 0; i < count; i++ {
		m := sampleMerchants[s.rng.Intn(len(sampleMerchants))]
		amount := m.min
		if m.max > m.min {
			amount = m.min + s.rng.Float64()*(m.max-m.min)
		}
		amount = float64(int(amount*100)) / 100

		daysAgo := s.rng.Intn(analysis.SpendWindowDays)
		txs = append(txs, domain.Transaction{
			ID:             uuid.New().String(),
			Amount:         amount,
			Category:       m.category,
			Merchant:       m.name,
			Date:           now.AddDate(0, 0, -daysAgo).Add(-time.Duration(s.rng.Intn(12)) * time.Hour),
			IsSubscription: m.category == domain.CategorySubscriptions,
		})
	}

	// One paycheck so aggregate math sees money-in.
	txs = append(txs, domain.Transaction{
		ID:         uuid.New().String(),
		Amount:     defaultProfile.MonthlyBudget + defaultProfile.MonthlySavingsGoal,
		Category:   domain.CategoryOther,
		Merchant:   "Payroll",
		Date:       now.AddDate(0, 0, -14),
		IsIncoming: true,
	})

	return txs
}

// Achievements builds the default achievement list. It always includes
// the generic savings challenge and, when a dominant spending category
// exists, a category-specific cut-back challenge. Never returns fewer
// than one entry.
func (s *Seeder) Achievements(txs []domain.Transaction, now time.Time) []domain.Achievement {
	list := []domain.Achievement{
		{
			ID:           uuid.New().String(),
			Title:        "Savings streak",
			Description:  "Put away $50 this week and keep Scotty smiling.",
			TargetAmount: 50,
			Source:       domain.SourceLocal,
		},
	}

	if cat, spent, ok := dominantCategory(txs, now); ok {
		list = append(list, domain.Achievement{
			ID:           uuid.New().String(),
			Title:        fmt.Sprintf("Trim your %s spending", categoryLabel(cat)),
			Description:  fmt.Sprintf("Cut back 20%% on %s this month — that's about $%.0f back in your pocket.", categoryLabel(cat), spent*0.2),
			TargetAmount: float64(int(spent*0.2*100)) / 100,
			Category:     string(cat),
			Source:       domain.SourceLocal,
		})
	}

	return list
}

// dominantCategory returns the top spending category over the trailing
// window, if any outgoing spend exists at all.
func dominantCategory(txs []domain.Transaction, now time.Time) (domain.Category, float64, bool) {
	cutoff := now.AddDate(0, 0, -analysis.SpendWindowDays)
	totals := map[domain.Category]float64{}
	for _, tx := range txs {
		if tx.IsIncoming || tx.Date.Before(cutoff) {
			continue
		}
		totals[tx.Category] += tx.Amount
	}

	var best domain.Category
	var bestAmount float64
	for _, c := range domain.Categories {
		if totals[c] > bestAmount {
			best = c
			bestAmount = totals[c]
		}
	}
	return best, bestAmount, bestAmount > 0
}

var categoryLabels = map[domain.Category]string{
	domain.CategoryFoodDining:    "dining out",
	domain.CategoryGroceries:     "grocery",
	domain.CategoryTransport:     "transport",
	domain.CategoryEntertainment: "entertainment",
	domain.CategoryShopping:      "shopping",
	domain.CategorySubscriptions: "subscription",
	domain.CategoryUtilities:     "utility",
	domain.CategoryEducation:     "education",
	domain.CategoryHealth:        "health",
	domain.CategoryOther:         "miscellaneous",
}

func categoryLabel(c domain.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Insight produces a local daily insight from the top spending
// category; used until a daily payload arrives, and retained when the
// payload fetch times out.
func (s *Seeder) Insight(txs []domain.Transaction, metrics domain.HealthMetrics, now time.Time) string {
	if cat, spent, ok := dominantCategory(txs, now); ok {
		return fmt.Sprintf(
			"Your biggest spending area this month is %s at $%.0f. Your overall health score is %d — small cutbacks there move it fastest.",
			categoryLabel(cat), spent, metrics.OverallScore,
		)
	}
	return fmt.Sprintf("No spending recorded yet this month. Health score: %d. Scotty approves.", metrics.OverallScore)
}
