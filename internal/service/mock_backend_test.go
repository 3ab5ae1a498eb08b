package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// mockBackend implements port.Backend with per-method canned results
// and call counting.
type mockBackend struct {
	mu    sync.Mutex
	calls map[string]int

	probeErr error

	txs     []domain.Transaction
	txErr   error
	metrics *domain.HealthMetrics
	metErr  error
	scotty  *domain.ScottyState
	scErr   error
	profile *domain.UserProfile
	profErr error

	budgets  []domain.BudgetItem
	budErr   error
	accounts []domain.Account
	accErr   error
	today    float64
	todayErr error

	daily    *domain.DailyPayload
	dailyErr error
	quest    *domain.Quest
	questErr error

	feedResp  *domain.ScottyState
	feedErr   error
	chatResp  string
	chatErr   error
	budgetErr error
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: map[string]int{}}
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockBackend) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBackend) Probe(_ context.Context) error {
	m.record("probe")
	return m.probeErr
}

func (m *mockBackend) FetchTransactions(_ context.Context) ([]domain.Transaction, error) {
	m.record("transactions")
	return m.txs, m.txErr
}

func (m *mockBackend) FetchHealthMetrics(_ context.Context) (*domain.HealthMetrics, error) {
	m.record("metrics")
	return m.metrics, m.metErr
}

func (m *mockBackend) FetchScottyState(_ context.Context) (*domain.ScottyState, error) {
	m.record("pet")
	return m.scotty, m.scErr
}

func (m *mockBackend) FetchProfile(_ context.Context) (*domain.UserProfile, error) {
	m.record("profile")
	return m.profile, m.profErr
}

func (m *mockBackend) FetchBudgets(_ context.Context) ([]domain.BudgetItem, error) {
	m.record("budgets")
	return m.budgets, m.budErr
}

func (m *mockBackend) FetchAccounts(_ context.Context) ([]domain.Account, error) {
	m.record("accounts")
	return m.accounts, m.accErr
}

func (m *mockBackend) FetchTodaySpend(_ context.Context) (float64, error) {
	m.record("today_spend")
	return m.today, m.todayErr
}

func (m *mockBackend) FetchDailyPayload(_ context.Context) (*domain.DailyPayload, error) {
	m.record("daily")
	return m.daily, m.dailyErr
}

func (m *mockBackend) FetchActiveQuest(_ context.Context) (*domain.Quest, error) {
	m.record("quest")
	return m.quest, m.questErr
}

func (m *mockBackend) Feed(_ context.Context, _ domain.FeedType) (*domain.ScottyState, error) {
	m.record("feed")
	return m.feedResp, m.feedErr
}

func (m *mockBackend) SendChat(_ context.Context, _ string) (string, error) {
	m.record("chat")
	return m.chatResp, m.chatErr
}

func (m *mockBackend) CreateBudget(_ context.Context, b domain.BudgetItem) (*domain.BudgetItem, error) {
	m.record("create_budget")
	if m.budgetErr != nil {
		return nil, m.budgetErr
	}
	return &b, nil
}

func (m *mockBackend) UpdateBudget(_ context.Context, b domain.BudgetItem) (*domain.BudgetItem, error) {
	m.record("update_budget")
	if m.budgetErr != nil {
		return nil, m.budgetErr
	}
	return &b, nil
}
