// Package state holds the single in-memory application state read by
// the presentation layer. All writes go through the explicit mutators
// below; there are no ambient globals. State lives only for the
// process lifetime.
package state

import (
	"sync"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

// Phase is the backend-upgrade lifecycle of the session.
type Phase string

const (
	PhaseLocalOnly         Phase = "local_only"
	PhaseProbePending      Phase = "probe_pending"
	PhaseUpgrading         Phase = "upgrading"
	PhasePartiallyUpgraded Phase = "partially_upgraded"
	PhaseFullyUpgraded     Phase = "fully_upgraded"
)

// Snapshot is a consistent point-in-time copy of everything the
// presentation layer may read.
type Snapshot struct {
	Profile          domain.UserProfile   `json:"profile"`
	Transactions     []domain.Transaction `json:"transactions"`
	Achievements     []domain.Achievement `json:"achievements"`
	Scotty           domain.ScottyState   `json:"scotty"`
	Metrics          domain.HealthMetrics `json:"metrics"`
	DailyInsight     string               `json:"daily_insight"`
	Budgets          []domain.BudgetItem  `json:"budgets"`
	Accounts         []domain.Account     `json:"accounts"`
	TotalBalance     float64              `json:"total_balance"`
	DailySpend       float64              `json:"daily_spend"`
	ChatMessages     []domain.ChatMessage `json:"chat_messages"`
	BackendConnected bool                 `json:"backend_connected"`
	Phase            Phase                `json:"phase"`
}

// Store guards the application state. Readers take snapshots; writers
// are the upgrade coordinator's apply methods and the action
// dispatcher.
type Store struct {
	mu sync.RWMutex

	profile          domain.UserProfile
	transactions     []domain.Transaction
	achievements     []domain.Achievement
	scotty           domain.ScottyState
	metrics          domain.HealthMetrics
	dailyInsight     string
	budgets          []domain.BudgetItem
	accounts         []domain.Account
	dailySpend       float64
	chatMessages     []domain.ChatMessage
	backendConnected bool
	phase            Phase
}

// New creates an empty store in the local-only phase.
func New() *Store {
	return &Store{phase: PhaseLocalOnly}
}

// Snapshot returns a copy of the full state. Slices are copied so
// callers can never alias live state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Profile:          s.profile,
		Transactions:     copySlice(s.transactions),
		Achievements:     copySlice(s.achievements),
		Scotty:           s.scotty,
		Metrics:          s.metrics,
		DailyInsight:     s.dailyInsight,
		Budgets:          copySlice(s.budgets),
		Accounts:         copySlice(s.accounts),
		TotalBalance:     domain.TotalBalance(s.accounts),
		DailySpend:       s.dailySpend,
		ChatMessages:     copySlice(s.chatMessages),
		BackendConnected: s.backendConnected,
		Phase:            s.phase,
	}
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// --- targeted reads ---

func (s *Store) Profile() domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.transactions)
}

func (s *Store) Scotty() domain.ScottyState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scotty
}

func (s *Store) Metrics() domain.HealthMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

func (s *Store) Achievements() []domain.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.achievements)
}

func (s *Store) Budgets() []domain.BudgetItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.budgets)
}

func (s *Store) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.accounts)
}

func (s *Store) ChatMessages() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.chatMessages)
}

func (s *Store) DailyInsight() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyInsight
}

func (s *Store) BackendConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendConnected
}

func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// --- mutators ---

func (s *Store) SetProfile(p domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

func (s *Store) SetTransactions(txs []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = copySlice(txs)
}

func (s *Store) SetMetrics(m domain.HealthMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

func (s *Store) SetScotty(sc domain.ScottyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scotty = sc
}

func (s *Store) SetAchievements(a []domain.Achievement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.achievements = copySlice(a)
}

func (s *Store) SetBudgets(b []domain.BudgetItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = copySlice(b)
}

func (s *Store) SetAccounts(a []domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = copySlice(a)
}

func (s *Store) SetDailySpend(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailySpend = v
}

func (s *Store) SetDailyInsight(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyInsight = text
}

func (s *Store) AppendChatMessage(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatMessages = append(s.chatMessages, msg)
}

// MarkBackendConnected flips the connection flag to true. It is set at
// most once per session and never revoked by a later timeout.
func (s *Store) MarkBackendConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backendConnected = true
}

func (s *Store) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

// MutateScotty applies fn to the pet state under the write lock. If fn
// returns an error the state is left untouched.
func (s *Store) MutateScotty(fn func(*domain.ScottyState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.scotty
	if err := fn(&next); err != nil {
		return err
	}
	s.scotty = next
	return nil
}

// MutateAchievements applies fn to a copy of the achievement list
// under the write lock. If fn returns an error the list is untouched.
func (s *Store) MutateAchievements(fn func([]domain.Achievement) ([]domain.Achievement, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(copySlice(s.achievements))
	if err != nil {
		return err
	}
	s.achievements = next
	return nil
}

// MutateBudgets applies fn to a copy of the budget list under the
// write lock. If fn returns an error the list is untouched.
func (s *Store) MutateBudgets(fn func([]domain.BudgetItem) ([]domain.BudgetItem, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(copySlice(s.budgets))
	if err != nil {
		return err
	}
	s.budgets = next
	return nil
}
