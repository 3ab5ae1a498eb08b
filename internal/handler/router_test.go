package handler_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/handler"
	"github.com/scottyfin/scotty-core-go/internal/infra/cache"
	"github.com/scottyfin/scotty-core-go/internal/infra/observability"
	"github.com/scottyfin/scotty-core-go/internal/local"
	"github.com/scottyfin/scotty-core-go/internal/port"
	"github.com/scottyfin/scotty-core-go/internal/service"
	"github.com/scottyfin/scotty-core-go/internal/state"

	"go.uber.org/zap"
)

// noopBackend satisfies port.Backend for handler tests. The store is
// never marked connected, so the dispatcher only takes local paths.
type noopBackend struct{}

func (noopBackend) Probe(context.Context) error { return nil }
func (noopBackend) FetchTransactions(context.Context) ([]domain.Transaction, error) {
	return nil, nil
}
func (noopBackend) FetchHealthMetrics(context.Context) (*domain.HealthMetrics, error) {
	return nil, nil
}
func (noopBackend) FetchScottyState(context.Context) (*domain.ScottyState, error) { return nil, nil }
func (noopBackend) FetchProfile(context.Context) (*domain.UserProfile, error)     { return nil, nil }
func (noopBackend) FetchBudgets(context.Context) ([]domain.BudgetItem, error)     { return nil, nil }
func (noopBackend) FetchAccounts(context.Context) ([]domain.Account, error)       { return nil, nil }
func (noopBackend) FetchTodaySpend(context.Context) (float64, error)              { return 0, nil }
func (noopBackend) FetchDailyPayload(context.Context) (*domain.DailyPayload, error) {
	return nil, nil
}
func (noopBackend) FetchActiveQuest(context.Context) (*domain.Quest, error) { return nil, nil }
func (noopBackend) Feed(context.Context, domain.FeedType) (*domain.ScottyState, error) {
	return nil, nil
}
func (noopBackend) SendChat(context.Context, string) (string, error) { return "", nil }
func (noopBackend) CreateBudget(_ context.Context, b domain.BudgetItem) (*domain.BudgetItem, error) {
	return &b, nil
}
func (noopBackend) UpdateBudget(_ context.Context, b domain.BudgetItem) (*domain.BudgetItem, error) {
	return &b, nil
}

var _ port.Backend = noopBackend{}

func newTestRouter(t *testing.T) (http.Handler, *state.Store) {
	t.Helper()

	store := state.New()
	seeder := local.NewSeeder(nil, 7)
	responder := local.NewResponder(rand.New(rand.NewSource(7)))
	dailyCache := cache.New[domain.DailyPayload](24 * time.Hour)
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	timings := service.Timings{Probe: time.Second, Upgrade: time.Second, Daily: time.Second}

	coordinator := service.NewCoordinator(noopBackend{}, store, seeder, dailyCache, nil, metrics, logger, timings, nil, nil)
	coordinator.SeedLocal()

	dispatcher := service.NewDispatcher(noopBackend{}, store, seeder, responder, dailyCache, metrics, logger, timings, nil)
	return handler.NewRouter(store, dispatcher, metrics, logger), store
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestGetState(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap state.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if snap.Phase != state.PhaseLocalOnly {
		t.Errorf("phase = %q, want %q", snap.Phase, state.PhaseLocalOnly)
	}
	if len(snap.Transactions) == 0 {
		t.Error("expected seeded transactions in the snapshot")
	}
}

func TestFeedAction(t *testing.T) {
	router, store := newTestRouter(t)
	store.SetScotty(domain.ScottyState{Mood: domain.MoodContent, Happiness: 70, FoodCredits: 10})

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/feed", strings.NewReader(`{"type":"treat"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var scotty domain.ScottyState
	if err := json.NewDecoder(rec.Body).Decode(&scotty); err != nil {
		t.Fatalf("decoding pet state: %v", err)
	}
	if scotty.FoodCredits != 8 || scotty.Happiness != 75 {
		t.Errorf("state = %+v, want credits 8 and happiness 75", scotty)
	}
}

func TestFeedAction_RefusedIsUnprocessable(t *testing.T) {
	router, store := newTestRouter(t)
	store.SetScotty(domain.ScottyState{Mood: domain.MoodContent, Happiness: 70, FoodCredits: 1})

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/feed", strings.NewReader(`{"type":"meal"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestFeedAction_BadTypeIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/feed", strings.NewReader(`{"type":"banquet"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestChatAction(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/chat", strings.NewReader(`{"message":"how am I doing?"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var reply domain.ChatMessage
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if reply.Role != domain.RoleScotty || reply.Text == "" {
		t.Errorf("reply = %+v, want a non-empty reply from scotty", reply)
	}
}

func TestChatAction_BlankIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/chat", strings.NewReader(`{"message":"  "}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAchievementActions(t *testing.T) {
	router, store := newTestRouter(t)
	store.SetScotty(domain.ScottyState{Mood: domain.MoodContent, Happiness: 70, FoodCredits: 10})
	store.SetAchievements([]domain.Achievement{{ID: "a1", Source: domain.SourceLocal}})

	req := httptest.NewRequest(http.MethodPost, "/v1/actions/achievements/a1/complete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/actions/achievements/a1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss: expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/actions/achievements/a1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second dismiss: expected 404, got %d", rec.Code)
	}
}

func TestCreateBudgetAction(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"category":"groceries","frequency":"month","limit_amount":300}`
	req := httptest.NewRequest(http.MethodPost, "/v1/actions/budgets", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var budget domain.BudgetItem
	if err := json.NewDecoder(rec.Body).Decode(&budget); err != nil {
		t.Fatalf("decoding budget: %v", err)
	}
	if budget.ID == "" || budget.DerivedDailyLimit <= 0 {
		t.Errorf("budget = %+v, want a generated id and a daily limit", budget)
	}
}
