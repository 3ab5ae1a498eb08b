// Package backend wraps HTTP calls to the remote Scotty backend. Every
// call goes through the circuit breaker and retry policy and carries
// the caller's context, so a timed-out operation is aborted at its
// source instead of writing late.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("backend")

// Client talks to the Scotty backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a backend client.
func NewClient(httpClient *http.Client, baseURL, userID string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userID:     userID,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// Probe checks backend reachability. It is called exactly once per
// session and deliberately skips the retry policy: a slow or broken
// backend must resolve the probe within its short deadline.
func (c *Client) Probe(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}
	return nil
}

// doJSON executes a request with retry + circuit breaker and decodes
// the JSON response into out (skipped when out is nil).
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var body io.Reader
			if payload != nil {
				raw, err := json.Marshal(payload)
				if err != nil {
					return err
				}
				body = bytes.NewReader(raw)
			}

			url := fmt.Sprintf("%s%s", c.baseURL, path)
			req, err := http.NewRequestWithContext(ctx, method, url, body)
			if err != nil {
				return err
			}
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
				return &domain.ErrNotFound{Resource: path, ID: c.userID}
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				raw, _ := io.ReadAll(resp.Body)
				c.logger.Warn("backend: non-2xx response",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status", resp.StatusCode),
					zap.String("body", string(raw)),
				)
				return fmt.Errorf("backend returned status %d", resp.StatusCode)
			}

			if out == nil {
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: c.cb.Name()}
	}
	return err
}
