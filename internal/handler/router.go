// Package handler is the HTTP presentation surface of the companion
// core. Reads serve snapshots from the state store; actions go
// through the dispatcher.
package handler

import (
	"net/http"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/infra/observability"
	"github.com/scottyfin/scotty-core-go/internal/service"
	"github.com/scottyfin/scotty-core-go/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(store *state.Store, dispatcher *service.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// State reads: the full snapshot and targeted slices of it.
		r.Get("/state", getStateHandler(store, logger))
		r.Get("/state/scotty", getScottyHandler(store, logger))
		r.Get("/state/metrics", getMetricsHandler(store, logger))
		r.Get("/state/transactions", getTransactionsHandler(store, logger))
		r.Get("/state/achievements", getAchievementsHandler(store, logger))
		r.Get("/state/budgets", getBudgetsHandler(store, logger))
		r.Get("/state/accounts", getAccountsHandler(store, logger))
		r.Get("/state/chat", getChatHandler(store, logger))
		r.Get("/state/insight", getInsightHandler(store, logger))

		// Session counter snapshot, a friendlier view of /metrics.
		r.Get("/metrics/session", sessionMetricsHandler(metrics, logger))

		// Actions.
		r.Route("/actions", func(r chi.Router) {
			r.Post("/feed", feedHandler(dispatcher, logger))
			r.Post("/chat", chatHandler(dispatcher, logger))
			r.Post("/achievements/{achievementId}/complete", completeAchievementHandler(dispatcher, logger))
			r.Delete("/achievements/{achievementId}", dismissAchievementHandler(dispatcher, logger))
			r.Post("/budgets", createBudgetHandler(dispatcher, logger))
			r.Put("/budgets/{budgetId}", updateBudgetHandler(dispatcher, logger))
			r.Post("/insight/refresh", refreshInsightHandler(dispatcher, logger))
		})
	})

	return r
}

func sessionMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSessionSnapshot())
	}
}

func healthzHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":            "ok",
			"phase":             store.Phase(),
			"backend_connected": store.BackendConnected(),
			"time":              time.Now().Format(time.RFC3339),
		})
	}
}
