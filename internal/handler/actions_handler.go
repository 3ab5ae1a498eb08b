package handler

import (
	"net/http"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Action handlers
// ============================================================

type feedRequest struct {
	Type string `json:"type"`
}

func feedHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/actions/feed")
		defer span.End()

		var req feedRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		scotty, err := dispatcher.Feed(ctx, domain.FeedType(req.Type))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, scotty)
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

func chatHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/actions/chat")
		defer span.End()

		var req chatRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		reply, err := dispatcher.SendChatMessage(ctx, req.Message)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func completeAchievementHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/actions/achievements/{achievementId}/complete")
		defer span.End()

		id := chi.URLParam(r, "achievementId")
		if err := dispatcher.CompleteAchievement(id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "completed", "id": id})
	}
}

func dismissAchievementHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "DELETE /v1/actions/achievements/{achievementId}")
		defer span.End()

		id := chi.URLParam(r, "achievementId")
		if err := dispatcher.DismissAchievement(id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func createBudgetHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/actions/budgets")
		defer span.End()

		var budget domain.BudgetItem
		if !decodeJSON(w, r, &budget) {
			return
		}

		created, err := dispatcher.CreateBudget(ctx, budget)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateBudgetHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/actions/budgets/{budgetId}")
		defer span.End()

		var budget domain.BudgetItem
		if !decodeJSON(w, r, &budget) {
			return
		}
		budget.ID = chi.URLParam(r, "budgetId")

		updated, err := dispatcher.UpdateBudget(ctx, budget)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func refreshInsightHandler(dispatcher *service.Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/actions/insight/refresh")
		defer span.End()

		insight := dispatcher.RefreshInsight(ctx)
		writeJSON(w, http.StatusOK, map[string]string{"insight": insight})
	}
}
