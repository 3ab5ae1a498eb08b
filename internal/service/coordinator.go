// Package service implements the behavior of the companion core: the
// backend upgrade coordinator, the achievement reconciler, and the
// action dispatcher. Services read and write application state only
// through the state.Store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/analysis"
	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/infra/observability"
	"github.com/scottyfin/scotty-core-go/internal/infra/resilience"
	"github.com/scottyfin/scotty-core-go/internal/local"
	"github.com/scottyfin/scotty-core-go/internal/port"
	"github.com/scottyfin/scotty-core-go/internal/state"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// Timings bounds the upgrade sequence.
type Timings struct {
	Probe   time.Duration // reachability probe
	Upgrade time.Duration // overall upgrade deadline
	Daily   time.Duration // each wave-3 step
}

// Coordinator seeds the local baseline and then upgrades it from the
// backend under bounded time budgets. Every fetch is individually
// fault-isolated: a slow or broken resource never blocks or corrupts
// its siblings.
type Coordinator struct {
	backend          port.Backend
	store            *state.Store
	seeder           *local.Seeder
	dailyCache       port.Cache[domain.DailyPayload]
	bulkhead         *resilience.Bulkhead
	metrics          *observability.Metrics
	logger           *zap.Logger
	timings          Timings
	impulseMerchants []string
	clock            func() time.Time
}

// NewCoordinator creates the upgrade coordinator. A nil clock means
// the wall clock.
func NewCoordinator(
	backend port.Backend,
	store *state.Store,
	seeder *local.Seeder,
	dailyCache port.Cache[domain.DailyPayload],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
	timings Timings,
	impulseMerchants []string,
	clock func() time.Time,
) *Coordinator {
	if clock == nil {
		clock = time.Now
	}
	return &Coordinator{
		backend:          backend,
		store:            store,
		seeder:           seeder,
		dailyCache:       dailyCache,
		bulkhead:         bulkhead,
		metrics:          metrics,
		logger:           logger,
		timings:          timings,
		impulseMerchants: impulseMerchants,
		clock:            clock,
	}
}

// SeedLocal installs the immediately-usable baseline state. It uses no
// network and always succeeds.
func (c *Coordinator) SeedLocal() {
	now := c.clock()
	seed := c.seeder.Build(now)

	c.store.SetProfile(seed.Profile)
	c.store.SetTransactions(seed.Transactions)
	c.store.SetMetrics(seed.Metrics)
	c.store.SetScotty(seed.Scotty)
	c.store.SetAchievements(seed.Achievements)
	c.store.SetDailyInsight(seed.Insight)
	c.store.SetPhase(state.PhaseLocalOnly)

	c.logger.Info("local baseline seeded",
		zap.Int("transactions", len(seed.Transactions)),
		zap.Int("achievements", len(seed.Achievements)),
		zap.Int("health_score", seed.Metrics.OverallScore),
	)
}

// Upgrade probes the backend and, if reachable, upgrades the seeded
// state. It never returns an error: every failure path resolves into a
// state phase.
func (c *Coordinator) Upgrade(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Coordinator.Upgrade")
	defer span.End()

	c.store.SetPhase(state.PhaseProbePending)

	err := resilience.Bounded(ctx, "probe", c.timings.Probe, func(pctx context.Context) error {
		return c.backend.Probe(pctx)
	})
	if err != nil {
		// Terminal for the session: no retry is scheduled and the
		// connected flag stays false.
		c.metrics.IncrProbe("failure")
		c.store.SetPhase(state.PhaseLocalOnly)
		c.logger.Info("backend unreachable, staying local-only", zap.Error(err))
		return
	}

	c.metrics.IncrProbe("success")
	c.store.MarkBackendConnected()
	c.store.SetPhase(state.PhaseUpgrading)
	c.logger.Info("backend reachable, upgrading state")

	start := c.clock()
	uctx, cancel := context.WithTimeout(ctx, c.timings.Upgrade)
	defer cancel()

	c.runWaveOne(uctx)
	c.runWaveTwo(uctx)
	c.runWaveThree(uctx)

	phase := state.PhaseFullyUpgraded
	if uctx.Err() != nil {
		// Whatever partial results were applied stay applied.
		phase = state.PhasePartiallyUpgraded
	}
	c.store.SetPhase(phase)
	c.metrics.RecordUpgradeDuration(string(phase), time.Since(start))
	c.logger.Info("upgrade finished",
		zap.String("phase", string(phase)),
		zap.Duration("took", time.Since(start)),
	)
}

// fetchIsolated runs fetch under the bulkhead and absorbs its failure:
// a warning is logged, a metric recorded, and ok=false returned so the
// caller keeps the seeded default for that resource only.
func fetchIsolated[T any](ctx context.Context, c *Coordinator, resource string, fetch func(context.Context) (T, error)) (T, bool) {
	var zero T
	if err := c.bulkhead.Acquire(ctx); err != nil {
		c.metrics.IncrFetchFailure(resource)
		c.logger.Warn("fetch skipped, upgrade deadline reached", zap.String("resource", resource))
		return zero, false
	}
	defer c.bulkhead.Release()

	v, err := fetch(ctx)
	if err != nil {
		c.metrics.IncrFetchFailure(resource)
		c.logger.Warn("fetch failed, keeping local value",
			zap.String("resource", resource),
			zap.Error(err),
		)
		return zero, false
	}
	return v, true
}

// runWaveOne fetches transactions, health metrics, pet state and the
// profile concurrently. All results are applied together after the
// wave settles, because wave two's derived math reads the transaction
// result.
func (c *Coordinator) runWaveOne(ctx context.Context) {
	var (
		txs       []domain.Transaction
		metrics   *domain.HealthMetrics
		scotty    *domain.ScottyState
		profile   *domain.UserProfile
		txsOK     bool
		metricsOK bool
		scottyOK  bool
		profileOK bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, txsOK = fetchIsolated(gctx, c, "transactions", c.backend.FetchTransactions)
		return nil
	})
	g.Go(func() error {
		metrics, metricsOK = fetchIsolated(gctx, c, "metrics", c.backend.FetchHealthMetrics)
		return nil
	})
	g.Go(func() error {
		scotty, scottyOK = fetchIsolated(gctx, c, "pet", c.backend.FetchScottyState)
		return nil
	})
	g.Go(func() error {
		profile, profileOK = fetchIsolated(gctx, c, "profile", c.backend.FetchProfile)
		return nil
	})
	_ = g.Wait() // goroutines absorb their own failures

	now := c.clock()

	if profileOK {
		c.store.SetProfile(*profile)
	}
	if txsOK {
		c.store.SetTransactions(txs)
	}

	// Defaults are re-derived locally so metrics and mood stay
	// consistent with whichever transaction set won.
	if metricsOK {
		c.store.SetMetrics(*metrics)
	} else {
		c.store.SetMetrics(analysis.ComputeHealthMetrics(c.store.Transactions(), c.store.Profile(), c.impulseMerchants, now))
	}

	if scottyOK {
		c.store.SetScotty(*scotty)
	} else {
		c.store.SetScotty(analysis.ComputeScottyState(c.store.Metrics(), c.store.Scotty(), now))
	}
}

// runWaveTwo fetches budgets, accounts and today's spend concurrently.
// The members are mutually independent and apply in any order; budget
// spent is derived from wave one's transaction result.
func (c *Coordinator) runWaveTwo(ctx context.Context) {
	txs := c.store.Transactions()
	now := c.clock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if budgets, ok := fetchIsolated(gctx, c, "budgets", c.backend.FetchBudgets); ok {
			for i := range budgets {
				budgets[i] = analysis.RefreshBudget(budgets[i], txs, now)
			}
			c.store.SetBudgets(budgets)
		}
		return nil
	})
	g.Go(func() error {
		if accounts, ok := fetchIsolated(gctx, c, "accounts", c.backend.FetchAccounts); ok {
			c.store.SetAccounts(accounts)
		}
		return nil
	})
	g.Go(func() error {
		if spend, ok := fetchIsolated(gctx, c, "today_spend", c.backend.FetchTodaySpend); ok {
			c.store.SetDailySpend(spend)
		}
		return nil
	})
	_ = g.Wait()
}

// runWaveThree runs the sequential, individually bounded steps: the
// daily payload, then the active quest feeding the reconciler.
func (c *Coordinator) runWaveThree(ctx context.Context) {
	c.fetchDaily(ctx)

	var quest *domain.Quest
	err := resilience.Bounded(ctx, "quests", c.timings.Daily, func(bctx context.Context) error {
		q, qerr := c.backend.FetchActiveQuest(bctx)
		if qerr != nil {
			return qerr
		}
		quest = q
		return nil
	})
	if err != nil {
		c.metrics.IncrFetchFailure("quests")
		c.logger.Warn("active quest fetch failed, reconciling without it", zap.Error(err))
		quest = nil
	}

	now := c.clock()
	localSet := c.seeder.Achievements(c.store.Transactions(), now)
	c.store.SetAchievements(ReconcileAchievements(quest, localSet))
}

// fetchDaily requests the daily payload. A timeout means "not ready
// yet", not an error: the previous insight is retained.
func (c *Coordinator) fetchDaily(ctx context.Context) {
	var payload *domain.DailyPayload
	err := resilience.Bounded(ctx, "daily", c.timings.Daily, func(bctx context.Context) error {
		p, perr := c.backend.FetchDailyPayload(bctx)
		if perr != nil {
			return perr
		}
		payload = p
		return nil
	})
	if err != nil {
		var timeout *domain.ErrTimeout
		if errors.As(err, &timeout) {
			c.logger.Warn("daily payload not ready yet, keeping current insight")
		} else {
			c.metrics.IncrFetchFailure("daily")
			c.logger.Warn("daily payload fetch failed, keeping current insight", zap.Error(err))
		}
		return
	}

	if payload == nil {
		return
	}
	if payload.Insight != "" {
		c.store.SetDailyInsight(payload.Insight)
	}
	// Memoised under the client's calendar day, not the payload's own
	// date: RefreshInsight looks up by local day and a timezone-skewed
	// backend date would always miss.
	c.dailyCache.Set(c.clock().Format("2006-01-02"), *payload)
}
