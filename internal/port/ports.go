// Package port defines the interfaces (ports) over the remote backend
// and shared infrastructure. The coordinator and dispatcher depend on
// these, never on the concrete HTTP client.
package port

import (
	"context"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

// Prober answers the reachability probe at session start.
type Prober interface {
	Probe(ctx context.Context) error
}

// StateFetcher covers the read endpoints consumed during the upgrade
// waves. Each method is independently fault-isolated by the caller.
type StateFetcher interface {
	FetchProfile(ctx context.Context) (*domain.UserProfile, error)
	FetchTransactions(ctx context.Context) ([]domain.Transaction, error)
	FetchHealthMetrics(ctx context.Context) (*domain.HealthMetrics, error)
	FetchScottyState(ctx context.Context) (*domain.ScottyState, error)
	FetchBudgets(ctx context.Context) ([]domain.BudgetItem, error)
	FetchAccounts(ctx context.Context) ([]domain.Account, error)
	FetchTodaySpend(ctx context.Context) (float64, error)
	FetchDailyPayload(ctx context.Context) (*domain.DailyPayload, error)
	FetchActiveQuest(ctx context.Context) (*domain.Quest, error)
}

// Mutator covers the mutating endpoints. Every caller has a local
// fallback; a Mutator error never surfaces to the user directly.
type Mutator interface {
	Feed(ctx context.Context, t domain.FeedType) (*domain.ScottyState, error)
	SendChat(ctx context.Context, message string) (string, error)
	CreateBudget(ctx context.Context, b domain.BudgetItem) (*domain.BudgetItem, error)
	UpdateBudget(ctx context.Context, b domain.BudgetItem) (*domain.BudgetItem, error)
}

// Backend is the full remote collaborator surface.
type Backend interface {
	Prober
	StateFetcher
	Mutator
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
