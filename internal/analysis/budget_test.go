package analysis_test

import (
	"testing"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/analysis"
	"github.com/scottyfin/scotty-core-go/internal/domain"
)

func TestDaysInPeriod(t *testing.T) {
	june := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC) // leap year

	cases := []struct {
		freq domain.Frequency
		now  time.Time
		want int
	}{
		{domain.FrequencyDay, june, 1},
		{domain.FrequencyWeek, june, 7},
		{domain.FrequencyMonth, june, 30},
		{domain.FrequencyMonth, feb, 29},
		{domain.FrequencyYear, june, 365},
	}
	for _, c := range cases {
		if got := analysis.DaysInPeriod(c.freq, c.now); got != c.want {
			t.Errorf("%s in %s: expected %d, got %d", c.freq, c.now.Month(), c.want, got)
		}
	}
}

func TestDailyLimit(t *testing.T) {
	june := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	b := domain.BudgetItem{Frequency: domain.FrequencyMonth, LimitAmount: 300}
	if got := analysis.DailyLimit(b, june); got != 10 {
		t.Errorf("expected 10/day, got %.2f", got)
	}

	b = domain.BudgetItem{Frequency: domain.FrequencyWeek, LimitAmount: 70}
	if got := analysis.DailyLimit(b, june); got != 10 {
		t.Errorf("expected 10/day, got %.2f", got)
	}
}

func TestBudgetSpent_FiltersPeriodAndCategory(t *testing.T) {
	b := domain.BudgetItem{Category: "Food & Drink", Frequency: domain.FrequencyWeek}

	txs := []domain.Transaction{
		tx(25, domain.CategoryFoodDining, "Chipotle", 2),
		tx(18, domain.CategoryFoodDining, "Subway", 5),
		tx(40, domain.CategoryFoodDining, "Olive Garden", 12), // outside the week
		tx(60, domain.CategoryGroceries, "Aldi", 1),           // wrong category
	}
	if got := analysis.BudgetSpent(b, txs, testNow); got != 43 {
		t.Errorf("expected 43, got %.2f", got)
	}
}

func TestProjectedSpent_FlooredElapsedFraction(t *testing.T) {
	monthStart := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	// day 1 of 30 => raw fraction 1/30 < 0.1, floored to 0.1.
	if got := analysis.ProjectedSpent(50, monthStart); got != 500 {
		t.Errorf("expected 500, got %.2f", got)
	}

	midMonth := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	if got := analysis.ProjectedSpent(100, midMonth); got != 200 {
		t.Errorf("expected 200, got %.2f", got)
	}
}

func TestOverProjected(t *testing.T) {
	midMonth := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	over := domain.BudgetItem{LimitAmount: 150, Spent: 100}
	if !analysis.OverProjected(over, midMonth) {
		t.Error("expected over-projection at double pace")
	}

	under := domain.BudgetItem{LimitAmount: 300, Spent: 100}
	if analysis.OverProjected(under, midMonth) {
		t.Error("did not expect over-projection at on-pace spend")
	}
}

func TestRefreshBudget(t *testing.T) {
	b := domain.BudgetItem{
		ID:          "b-1",
		Category:    "groceries",
		Frequency:   domain.FrequencyMonth,
		LimitAmount: 300,
		Spent:       9999, // stale cached value, must be overwritten
	}
	txs := []domain.Transaction{
		tx(80, domain.CategoryGroceries, "Aldi", 3),
		tx(45.50, domain.CategoryGroceries, "Lidl", 8),
	}

	got := analysis.RefreshBudget(b, txs, testNow)
	if got.Spent != 125.50 {
		t.Errorf("expected spent 125.50, got %.2f", got.Spent)
	}
	if got.DerivedDailyLimit != 10 {
		t.Errorf("expected daily limit 10, got %.2f", got.DerivedDailyLimit)
	}
}
