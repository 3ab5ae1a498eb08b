package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

// wireTransaction is the backend's transaction row. The category is an
// open-ended string in a loosely Plaid-like vocabulary and must be
// mapped into the closed enum before entering the data model.
type wireTransaction struct {
	ID             string  `json:"id"`
	Amount         float64 `json:"amount"`
	Category       string  `json:"category"`
	Merchant       string  `json:"merchant"`
	Date           string  `json:"date"`
	IsSubscription bool    `json:"is_subscription"`
	IsIncoming     bool    `json:"is_incoming"`
}

// FetchTransactions fetches and maps the user's transactions.
func (c *Client) FetchTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchTransactions")
	defer span.End()

	var rows []wireTransaction
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/v1/users/%s/transactions", c.userID), nil, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "transactions", Err: err}
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(time.RFC3339, row.Date)
		if err != nil {
			// A malformed row is dropped, never fatal for the batch.
			c.logger.Warn("backend: dropping transaction with bad date")
			continue
		}
		amount := row.Amount
		if amount < 0 {
			amount = -amount
		}
		txs = append(txs, domain.Transaction{
			ID:             row.ID,
			Amount:         amount,
			Category:       domain.ParseCategory(row.Category),
			Merchant:       row.Merchant,
			Date:           date,
			IsSubscription: row.IsSubscription,
			IsIncoming:     row.IsIncoming,
		})
	}
	return txs, nil
}

// FetchProfile fetches the user's financial baseline.
func (c *Client) FetchProfile(ctx context.Context) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchProfile")
	defer span.End()

	var p domain.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/v1/users/%s/profile", c.userID), nil, &p); err != nil {
		return nil, &domain.ErrExternalService{Service: "profile", Err: err}
	}
	return &p, nil
}

// FetchHealthMetrics fetches the backend's view of the health scores.
func (c *Client) FetchHealthMetrics(ctx context.Context) (*domain.HealthMetrics, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchHealthMetrics")
	defer span.End()

	var m domain.HealthMetrics
	if err := c.doJSON(ctx, http.MethodGet, "/v1/metrics", nil, &m); err != nil {
		return nil, &domain.ErrExternalService{Service: "metrics", Err: err}
	}
	return &m, nil
}

// FetchScottyState fetches the canonical pet state.
func (c *Client) FetchScottyState(ctx context.Context) (*domain.ScottyState, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchScottyState")
	defer span.End()

	var s domain.ScottyState
	if err := c.doJSON(ctx, http.MethodGet, "/v1/pet", nil, &s); err != nil {
		return nil, &domain.ErrExternalService{Service: "pet", Err: err}
	}
	return &s, nil
}

// wireBudget carries the backend's budget row. The spent column is
// ignored on purpose: spent is always recomputed client-side.
type wireBudget struct {
	ID                   string  `json:"id"`
	Category             string  `json:"category"`
	Frequency            string  `json:"frequency"`
	LimitAmount          float64 `json:"limit_amount"`
	AdaptiveEnabled      bool    `json:"adaptive_enabled"`
	AdaptiveMaxAdjustPct float64 `json:"adaptive_max_adjust_pct"`
}

// FetchBudgets fetches the user's budgets. Spent and the derived daily
// limit are left zero; the coordinator derives them from the freshest
// transactions.
func (c *Client) FetchBudgets(ctx context.Context) ([]domain.BudgetItem, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchBudgets")
	defer span.End()

	var rows []wireBudget
	if err := c.doJSON(ctx, http.MethodGet, "/v1/budgets", nil, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "budgets", Err: err}
	}

	budgets := make([]domain.BudgetItem, 0, len(rows))
	for _, row := range rows {
		budgets = append(budgets, domain.BudgetItem{
			ID:                   row.ID,
			Category:             row.Category,
			Frequency:            parseFrequency(row.Frequency),
			LimitAmount:          row.LimitAmount,
			AdaptiveEnabled:      row.AdaptiveEnabled,
			AdaptiveMaxAdjustPct: row.AdaptiveMaxAdjustPct,
		})
	}
	return budgets, nil
}

func parseFrequency(s string) domain.Frequency {
	switch domain.Frequency(s) {
	case domain.FrequencyDay, domain.FrequencyWeek, domain.FrequencyYear:
		return domain.Frequency(s)
	default:
		return domain.FrequencyMonth
	}
}

// FetchAccounts fetches the user's linked accounts.
func (c *Client) FetchAccounts(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchAccounts")
	defer span.End()

	var accounts []domain.Account
	if err := c.doJSON(ctx, http.MethodGet, "/v1/accounts", nil, &accounts); err != nil {
		return nil, &domain.ErrExternalService{Service: "accounts", Err: err}
	}
	return accounts, nil
}

// FetchTodaySpend fetches today's running spend total.
func (c *Client) FetchTodaySpend(ctx context.Context) (float64, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchTodaySpend")
	defer span.End()

	var out struct {
		Total float64 `json:"total"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/spend/today", nil, &out); err != nil {
		return 0, &domain.ErrExternalService{Service: "today_spend", Err: err}
	}
	return out.Total, nil
}

// FetchDailyPayload fetches the daily bundle. This call may be slow:
// the backend can trigger generation work server-side, so callers
// bound it separately and treat a timeout as "not ready yet".
func (c *Client) FetchDailyPayload(ctx context.Context) (*domain.DailyPayload, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchDailyPayload")
	defer span.End()

	var p domain.DailyPayload
	if err := c.doJSON(ctx, http.MethodGet, "/v1/daily", nil, &p); err != nil {
		return nil, &domain.ErrExternalService{Service: "daily", Err: err}
	}
	return &p, nil
}

// FetchActiveQuest fetches the active backend quest, if any. A missing
// quest is reported as (nil, nil).
func (c *Client) FetchActiveQuest(ctx context.Context) (*domain.Quest, error) {
	ctx, span := tracer.Start(ctx, "Client.FetchActiveQuest")
	defer span.End()

	var q domain.Quest
	err := c.doJSON(ctx, http.MethodGet, "/v1/quests/active", nil, &q)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, &domain.ErrExternalService{Service: "quests", Err: err}
	}
	if q.ID == "" {
		return nil, nil
	}
	return &q, nil
}
