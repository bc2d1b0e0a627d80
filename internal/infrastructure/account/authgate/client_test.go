package authgate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/auctionarena/auction-arena/internal/platform/logging"
	"github.com/auctionarena/auction-arena/internal/platform/resilience"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

func TestVerifyAccessToken_ParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Fatalf("unexpected token value: %s", req["token"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"active":  true,
			"user_id": "org-123",
			"email":   "org@example.com",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", nil, logging.NewNop())

	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if principal.UserID != "org-123" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
	if principal.Email != "org@example.com" {
		t.Fatalf("unexpected email: %s", principal.Email)
	}
}

func TestVerifyAccessToken_InactiveToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{"active": false})
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", nil, logging.NewNop())

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyAccessToken_EmptyToken(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, "http://localhost:0", "/v1/auth/introspect", nil, logging.NewNop())

	_, err := client.VerifyAccessToken(context.Background(), "  ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyAccessToken_CircuitOpensOnServerFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := resilience.NewCircuitBreaker(2, time.Minute, 1)
	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", breaker, logging.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "token-abc"); err == nil {
			t.Fatal("expected error from failing introspection")
		}
	}

	// The breaker is open now; the next call never reaches the server.
	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 upstream hits, got %d", got)
	}
}

func TestVerifyAccessToken_RejectionDoesNotTripCircuit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	breaker := resilience.NewCircuitBreaker(1, time.Minute, 1)
	client := NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", breaker, logging.NewNop())

	for i := 0; i < 3; i++ {
		_, err := client.VerifyAccessToken(context.Background(), "bad-token")
		if !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	}
}
