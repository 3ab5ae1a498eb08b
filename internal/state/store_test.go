package state_test

import (
	"errors"
	"testing"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/state"
)

func TestSnapshotCopiesSlices(t *testing.T) {
	store := state.New()
	store.SetTransactions([]domain.Transaction{{ID: "t1", Amount: 10}})

	snap := store.Snapshot()
	snap.Transactions[0].Amount = 9999

	if got := store.Transactions()[0].Amount; got != 10 {
		t.Errorf("live state mutated through a snapshot: amount = %v", got)
	}
}

func TestMarkBackendConnectedIsSticky(t *testing.T) {
	store := state.New()
	if store.BackendConnected() {
		t.Fatal("new store must start disconnected")
	}

	store.MarkBackendConnected()
	store.MarkBackendConnected()
	if !store.BackendConnected() {
		t.Error("connected flag must stay true once set")
	}
}

func TestMutateScottyErrorLeavesStateUntouched(t *testing.T) {
	store := state.New()
	store.SetScotty(domain.ScottyState{Mood: domain.MoodContent, Happiness: 70, FoodCredits: 3})

	boom := errors.New("refused")
	err := store.MutateScotty(func(s *domain.ScottyState) error {
		s.FoodCredits = 0
		s.Happiness = 100
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the mutation error", err)
	}

	got := store.Scotty()
	if got.FoodCredits != 3 || got.Happiness != 70 {
		t.Errorf("state = %+v, a failed mutation must apply nothing", got)
	}
}

func TestMutateAchievementsReplacesList(t *testing.T) {
	store := state.New()
	store.SetAchievements([]domain.Achievement{{ID: "a1"}, {ID: "a2"}})

	err := store.MutateAchievements(func(list []domain.Achievement) ([]domain.Achievement, error) {
		return list[:1], nil
	})
	if err != nil {
		t.Fatalf("MutateAchievements: %v", err)
	}
	if got := store.Achievements(); len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("achievements = %+v, want only a1", got)
	}
}

func TestMutateBudgetsErrorLeavesListUntouched(t *testing.T) {
	store := state.New()
	store.SetBudgets([]domain.BudgetItem{{ID: "b1", LimitAmount: 100}})

	boom := errors.New("boom")
	err := store.MutateBudgets(func(list []domain.BudgetItem) ([]domain.BudgetItem, error) {
		list[0].LimitAmount = 9999
		return append(list, domain.BudgetItem{ID: "b2"}), boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := store.Budgets(); len(got) != 1 || got[0].LimitAmount != 100 {
		t.Errorf("budgets = %+v, want the untouched b1", got)
	}
}

func TestTotalBalanceComputedInSnapshot(t *testing.T) {
	store := state.New()
	store.SetAccounts([]domain.Account{{ID: "a1", Balance: 100.10}, {ID: "a2", Balance: 49.95}})

	if got := store.Snapshot().TotalBalance; got != 150.05 {
		t.Errorf("total balance = %v, want 150.05", got)
	}
}
