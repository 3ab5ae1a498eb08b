package handler

import (
	"net/http"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/state"

	"go.uber.org/zap"
)

// ============================================================
// State read handlers
// ============================================================

func getStateHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state")
		defer span.End()
		writeJSON(w, http.StatusOK, store.Snapshot())
	}
}

func getScottyHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/scotty")
		defer span.End()
		writeJSON(w, http.StatusOK, store.Scotty())
	}
}

func getMetricsHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/metrics")
		defer span.End()
		writeJSON(w, http.StatusOK, store.Metrics())
	}
}

func getTransactionsHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/transactions")
		defer span.End()
		writeJSON(w, http.StatusOK, store.Transactions())
	}
}

func getAchievementsHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/achievements")
		defer span.End()
		writeJSON(w, http.StatusOK, store.Achievements())
	}
}

func getBudgetsHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/budgets")
		defer span.End()
		writeJSON(w, http.StatusOK, store.Budgets())
	}
}

func getAccountsHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/accounts")
		defer span.End()
		accounts := store.Accounts()
		writeJSON(w, http.StatusOK, map[string]any{
			"accounts":      accounts,
			"total_balance": domain.TotalBalance(accounts),
		})
	}
}

func getChatHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/chat")
		defer span.End()
		writeJSON(w, http.StatusOK, store.ChatMessages())
	}
}

func getInsightHandler(store *state.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/state/insight")
		defer span.End()
		writeJSON(w, http.StatusOK, map[string]string{"insight": store.DailyInsight()})
	}
}
