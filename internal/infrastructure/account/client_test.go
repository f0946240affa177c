package account

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/user"
	"github.com/gridironhq/gridiron/internal/platform/logging"
	"github.com/gridironhq/gridiron/internal/usecase"
)

func TestVerifyAccessToken_ActiveToken(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"user_id":"user-42","email":"u42@example.com"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		IntrospectPath: "/introspect",
		Logger:         logging.NewNop(),
		CacheTTL:       time.Minute,
	})

	principal, err := client.VerifyAccessToken(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if principal.UserID != "user-42" || principal.Email != "u42@example.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	// Second verification of the same token is served from the cache.
	if _, err := client.VerifyAccessToken(context.Background(), "some-token"); err != nil {
		t.Fatalf("verify cached token: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 introspection request, got %d", got)
	}
}

func TestVerifyAccessToken_InactiveToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":false}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, IntrospectPath: "/introspect", Logger: logging.NewNop()})

	_, err := client.VerifyAccessToken(context.Background(), "stale-token")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for inactive token, got %v", err)
	}
}

func TestVerifyAccessToken_Denied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, IntrospectPath: "/introspect", Logger: logging.NewNop()})

	_, err := client.VerifyAccessToken(context.Background(), "bad-token")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for denied introspection, got %v", err)
	}
}

func TestVerifyAccessToken_EmptyToken(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://localhost:1", Logger: logging.NewNop()})

	_, err := client.VerifyAccessToken(context.Background(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestPrincipalCache_TTLAndEviction(t *testing.T) {
	cache := newPrincipalCache(time.Millisecond, 2)

	cache.Set("a", principalFor("u-1"))
	if _, ok := cache.Get("a"); !ok {
		t.Fatalf("expected fresh entry to be cached")
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.Get("a"); ok {
		t.Fatalf("expected entry to expire after TTL")
	}

	cache2 := newPrincipalCache(time.Minute, 2)
	cache2.Set("a", principalFor("u-1"))
	cache2.Set("b", principalFor("u-2"))
	cache2.Set("c", principalFor("u-3"))

	stored := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := cache2.Get(key); ok {
			stored++
		}
	}
	if stored != 2 {
		t.Fatalf("expected eviction to hold the cache at 2 entries, got %d", stored)
	}
}

func TestHashToken_NeverEchoesToken(t *testing.T) {
	const token = "super-secret-token"
	hashed := hashToken(token)
	if hashed == token {
		t.Fatalf("token hash must differ from the raw token")
	}
	if len(hashed) != 64 {
		t.Fatalf("expected sha256 hex digest, got %d chars", len(hashed))
	}
}

func principalFor(userID string) user.Principal {
	return user.Principal{UserID: userID, Email: userID + "@example.com"}
}
