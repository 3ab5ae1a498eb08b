package service

import (
	"context"
	"strings"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/analysis"
	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/infra/observability"
	"github.com/scottyfin/scotty-core-go/internal/infra/resilience"
	"github.com/scottyfin/scotty-core-go/internal/local"
	"github.com/scottyfin/scotty-core-go/internal/port"
	"github.com/scottyfin/scotty-core-go/internal/state"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const achievementReward = 10 // food credits and happiness granted per completion

// Dispatcher is the mutating surface exposed to the presentation
// layer. Every remote mutation has an optimistic local fallback; a
// backend failure is never surfaced to the user as an error.
type Dispatcher struct {
	backend    port.Backend
	store      *state.Store
	seeder     *local.Seeder
	responder  *local.Responder
	dailyCache port.Cache[domain.DailyPayload]
	metrics    *observability.Metrics
	logger     *zap.Logger
	timings    Timings
	clock      func() time.Time
}

// NewDispatcher creates the action dispatcher. A nil clock means the
// wall clock.
func NewDispatcher(
	backend port.Backend,
	store *state.Store,
	seeder *local.Seeder,
	responder *local.Responder,
	dailyCache port.Cache[domain.DailyPayload],
	metrics *observability.Metrics,
	logger *zap.Logger,
	timings Timings,
	clock func() time.Time,
) *Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	return &Dispatcher{
		backend:    backend,
		store:      store,
		seeder:     seeder,
		responder:  responder,
		dailyCache: dailyCache,
		metrics:    metrics,
		logger:     logger,
		timings:    timings,
		clock:      clock,
	}
}

// Feed feeds the pet. When connected it attempts the remote call and
// replaces the pet state wholesale with the authoritative response; on
// disconnection or remote failure it applies the local fallback. A
// feed the credits cannot cover is refused with zero state change.
func (d *Dispatcher) Feed(ctx context.Context, t domain.FeedType) (domain.ScottyState, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Feed")
	defer span.End()
	defer d.observe("feed")()

	cost, boost, ok := domain.FeedCost(t)
	if !ok {
		return d.store.Scotty(), &domain.ErrValidation{Field: "type", Message: "must be treat or meal"}
	}

	if d.store.BackendConnected() {
		if remote, err := d.backend.Feed(ctx, t); err == nil {
			d.store.SetScotty(*remote)
			d.metrics.IncrAction("feed", "remote")
			return *remote, nil
		} else {
			d.logger.Warn("remote feed failed, applying local fallback", zap.Error(err))
			d.metrics.IncrFallback("feed")
		}
	}

	now := d.clock()
	err := d.store.MutateScotty(func(s *domain.ScottyState) error {
		if s.FoodCredits < cost {
			return &domain.ErrInsufficientCredits{Available: s.FoodCredits, Required: cost}
		}
		s.FoodCredits -= cost
		s.Happiness += boost
		if s.Happiness > 100 {
			s.Happiness = 100
		}
		s.LastFed = &now
		// Mood follows the boosted happiness directly; feeding never
		// re-applies the recency penalty to itself.
		s.Mood = analysis.MoodFor(s.Happiness)
		return nil
	})
	if err != nil {
		d.metrics.IncrAction("feed", "refused")
		return d.store.Scotty(), err
	}

	d.metrics.IncrAction("feed", "local")
	return d.store.Scotty(), nil
}

// CompleteAchievement marks one achievement completed and grants the
// fixed reward. Other achievements are untouched. The action is local
// only.
func (d *Dispatcher) CompleteAchievement(id string) error {
	err := d.store.MutateAchievements(func(list []domain.Achievement) ([]domain.Achievement, error) {
		for i := range list {
			if list[i].ID == id {
				list[i].Completed = true
				return list, nil
			}
		}
		return nil, &domain.ErrNotFound{Resource: "achievement", ID: id}
	})
	if err != nil {
		d.metrics.IncrAction("complete_achievement", "not_found")
		return err
	}

	_ = d.store.MutateScotty(func(s *domain.ScottyState) error {
		s.FoodCredits += achievementReward
		s.Happiness += achievementReward
		if s.Happiness > 100 {
			s.Happiness = 100
		}
		s.Mood = analysis.MoodFor(s.Happiness)
		return nil
	})

	d.metrics.IncrAction("complete_achievement", "ok")
	return nil
}

// DismissAchievement removes one achievement by id. It is never
// persisted remotely, even for backend-sourced quests.
func (d *Dispatcher) DismissAchievement(id string) error {
	err := d.store.MutateAchievements(func(list []domain.Achievement) ([]domain.Achievement, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, &domain.ErrNotFound{Resource: "achievement", ID: id}
	})
	if err != nil {
		d.metrics.IncrAction("dismiss_achievement", "not_found")
		return err
	}
	d.metrics.IncrAction("dismiss_achievement", "ok")
	return nil
}

// SendChatMessage appends the user's message and exactly one reply, on
// every path: remote when connected and healthy, the local heuristic
// responder otherwise, and a fixed apology if the responder itself
// blows up.
func (d *Dispatcher) SendChatMessage(ctx context.Context, text string) (domain.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.SendChatMessage")
	defer span.End()
	defer d.observe("chat")()

	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, &domain.ErrValidation{Field: "message", Message: "required"}
	}

	now := d.clock()
	d.store.AppendChatMessage(domain.ChatMessage{
		ID:     uuid.New().String(),
		Role:   domain.RoleUser,
		Text:   text,
		SentAt: now,
	})

	var replyText string
	origin := "local"

	if d.store.BackendConnected() {
		if remote, err := d.backend.SendChat(ctx, text); err == nil {
			replyText = remote
			origin = "remote"
		} else {
			d.logger.Warn("remote chat failed, using local responder", zap.Error(err))
			d.metrics.IncrFallback("chat")
		}
	}

	if origin == "local" {
		replyText = d.localReply(text)
		if replyText == local.ApologyReply {
			origin = "apology"
		}
	}

	reply := domain.ChatMessage{
		ID:     uuid.New().String(),
		Role:   domain.RoleScotty,
		Text:   replyText,
		SentAt: d.clock(),
	}
	d.store.AppendChatMessage(reply)
	d.metrics.IncrChatReply(origin)
	return reply, nil
}

// observe times one dispatcher operation into the request-duration
// histogram. Uses the wall clock; d.clock may be frozen in tests.
func (d *Dispatcher) observe(operation string) func() {
	start := time.Now()
	return func() {
		d.metrics.RecordRequestDuration(operation, time.Since(start))
	}
}

// localReply runs the heuristic responder, recovering a panic into the
// fixed apology so every chat call yields exactly one reply.
func (d *Dispatcher) localReply(text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("local responder panicked", zap.Any("panic", r))
			reply = local.ApologyReply
		}
	}()
	return d.responder.Reply(text, d.store.Transactions(), d.store.Metrics(), d.clock())
}

// CreateBudget validates and creates a budget. When connected the
// remote row wins and budgets are refreshed to re-derive spent; when
// disconnected or on remote failure the budget is applied
// optimistically from local data.
func (d *Dispatcher) CreateBudget(ctx context.Context, b domain.BudgetItem) (domain.BudgetItem, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.CreateBudget")
	defer span.End()
	defer d.observe("create_budget")()

	if b.LimitAmount <= 0 {
		return domain.BudgetItem{}, &domain.ErrValidation{Field: "limit_amount", Message: "must be positive"}
	}
	if b.Frequency == "" {
		b.Frequency = domain.FrequencyMonth
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	if d.store.BackendConnected() {
		if stored, err := d.backend.CreateBudget(ctx, b); err == nil {
			d.metrics.IncrAction("create_budget", "remote")
			d.RefreshBudgets(ctx)
			return *stored, nil
		} else {
			d.logger.Warn("remote budget create failed, applying locally", zap.Error(err))
			d.metrics.IncrFallback("create_budget")
		}
	}

	b = analysis.RefreshBudget(b, d.store.Transactions(), d.clock())
	_ = d.store.MutateBudgets(func(list []domain.BudgetItem) ([]domain.BudgetItem, error) {
		return append(list, b), nil
	})
	d.metrics.IncrAction("create_budget", "local")
	return b, nil
}

// UpdateBudget validates and updates a budget, mirroring CreateBudget.
func (d *Dispatcher) UpdateBudget(ctx context.Context, b domain.BudgetItem) (domain.BudgetItem, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.UpdateBudget")
	defer span.End()
	defer d.observe("update_budget")()

	if b.LimitAmount <= 0 {
		return domain.BudgetItem{}, &domain.ErrValidation{Field: "limit_amount", Message: "must be positive"}
	}
	if b.ID == "" {
		return domain.BudgetItem{}, &domain.ErrValidation{Field: "id", Message: "required"}
	}

	if d.store.BackendConnected() {
		if stored, err := d.backend.UpdateBudget(ctx, b); err == nil {
			d.metrics.IncrAction("update_budget", "remote")
			d.RefreshBudgets(ctx)
			return *stored, nil
		} else {
			d.logger.Warn("remote budget update failed, applying locally", zap.Error(err))
			d.metrics.IncrFallback("update_budget")
		}
	}

	refreshed := analysis.RefreshBudget(b, d.store.Transactions(), d.clock())
	err := d.store.MutateBudgets(func(list []domain.BudgetItem) ([]domain.BudgetItem, error) {
		for i := range list {
			if list[i].ID == b.ID {
				list[i] = refreshed
				return list, nil
			}
		}
		return nil, &domain.ErrNotFound{Resource: "budget", ID: b.ID}
	})
	if err != nil {
		return domain.BudgetItem{}, err
	}
	d.metrics.IncrAction("update_budget", "local")
	return refreshed, nil
}

// RefreshBudgets reruns the wave-two budget logic: fetch the rows and
// re-derive spent from the freshest transactions. Failures keep the
// current list.
func (d *Dispatcher) RefreshBudgets(ctx context.Context) {
	budgets, err := d.backend.FetchBudgets(ctx)
	if err != nil {
		d.logger.Warn("budget refresh failed, keeping current list", zap.Error(err))
		d.metrics.IncrFetchFailure("budgets")
		return
	}
	txs := d.store.Transactions()
	now := d.clock()
	for i := range budgets {
		budgets[i] = analysis.RefreshBudget(budgets[i], txs, now)
	}
	d.store.SetBudgets(budgets)
}

// RefreshInsight re-requests the daily payload, memoised per calendar
// day. A timeout or failure keeps the current insight; when
// disconnected the local insight is recomputed from fresh data.
func (d *Dispatcher) RefreshInsight(ctx context.Context) string {
	ctx, span := tracer.Start(ctx, "Dispatcher.RefreshInsight")
	defer span.End()
	defer d.observe("refresh_insight")()

	now := d.clock()
	dayKey := now.Format("2006-01-02")

	if cached, ok := d.dailyCache.Get(dayKey); ok {
		d.store.SetDailyInsight(cached.Insight)
		return cached.Insight
	}

	if !d.store.BackendConnected() {
		insight := d.seeder.Insight(d.store.Transactions(), d.store.Metrics(), now)
		d.store.SetDailyInsight(insight)
		return insight
	}

	var payload *domain.DailyPayload
	err := resilience.Bounded(ctx, "daily", d.timings.Daily, func(bctx context.Context) error {
		p, perr := d.backend.FetchDailyPayload(bctx)
		if perr != nil {
			return perr
		}
		payload = p
		return nil
	})
	if err != nil {
		d.logger.Warn("insight refresh failed, keeping current insight", zap.Error(err))
		d.metrics.IncrFetchFailure("daily")
		return d.store.DailyInsight()
	}

	if payload == nil {
		return d.store.DailyInsight()
	}
	if payload.Insight != "" {
		d.store.SetDailyInsight(payload.Insight)
	}
	d.dailyCache.Set(dayKey, *payload)
	return d.store.DailyInsight()
}
