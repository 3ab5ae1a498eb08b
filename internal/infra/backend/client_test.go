package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scottyfin/scotty-core-go/internal/domain"
	"github.com/scottyfin/scotty-core-go/internal/infra/backend"
	"github.com/scottyfin/scotty-core-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func TestClient_OpenBreakerYieldsCircuitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "scotty-backend",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})
	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond}
	client := backend.NewClient(srv.Client(), srv.URL, "test-user", cb, cfg, zap.NewNop())

	// First call fails on the 5xx and trips the breaker.
	if _, err := client.FetchProfile(context.Background()); err == nil {
		t.Fatal("expected an error from the failing backend")
	}

	_, err := client.FetchProfile(context.Background())
	var circuitOpen *domain.ErrCircuitOpen
	if !errors.As(err, &circuitOpen) {
		t.Fatalf("err = %v, want *domain.ErrCircuitOpen", err)
	}
	if circuitOpen.Service != "scotty-backend" {
		t.Errorf("service = %q, want the breaker name", circuitOpen.Service)
	}
}
