package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/scottyfin/scotty-core-go/internal/domain"
)

// Feed asks the backend to feed the pet. On success the response is
// the authoritative pet state and replaces the local one wholesale.
func (c *Client) Feed(ctx context.Context, t domain.FeedType) (*domain.ScottyState, error) {
	ctx, span := tracer.Start(ctx, "Client.Feed")
	defer span.End()

	payload := map[string]string{"type": string(t)}
	var s domain.ScottyState
	if err := c.doJSON(ctx, http.MethodPost, "/v1/pet/feed", payload, &s); err != nil {
		return nil, &domain.ErrExternalService{Service: "pet", Err: err}
	}
	return &s, nil
}

// SendChat sends the user's message to the backend chat agent and
// returns Scotty's reply text.
func (c *Client) SendChat(ctx context.Context, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "Client.SendChat")
	defer span.End()

	payload := map[string]string{"user_id": c.userID, "message": message}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/chat", payload, &out); err != nil {
		return "", &domain.ErrExternalService{Service: "chat", Err: err}
	}
	return out.Reply, nil
}

// CreateBudget creates a budget remotely and returns the stored row.
func (c *Client) CreateBudget(ctx context.Context, b domain.BudgetItem) (*domain.BudgetItem, error) {
	ctx, span := tracer.Start(ctx, "Client.CreateBudget")
	defer span.End()

	var out domain.BudgetItem
	if err := c.doJSON(ctx, http.MethodPost, "/v1/budgets", b, &out); err != nil {
		return nil, &domain.ErrExternalService{Service: "budgets", Err: err}
	}
	return &out, nil
}

// UpdateBudget updates a budget remotely and returns the stored row.
func (c *Client) UpdateBudget(ctx context.Context, b domain.BudgetItem) (*domain.BudgetItem, error) {
	ctx, span := tracer.Start(ctx, "Client.UpdateBudget")
	defer span.End()

	var out domain.BudgetItem
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/v1/budgets/%s", b.ID), b, &out); err != nil {
		return nil, &domain.ErrExternalService{Service: "budgets", Err: err}
	}
	return &out, nil
}
