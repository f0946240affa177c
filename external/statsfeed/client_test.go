package statsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridironhq/gridiron/internal/platform/logging"
	"github.com/gridironhq/gridiron/internal/platform/resilience"
	"github.com/gridironhq/gridiron/internal/usecase"
)

func newTestClient(baseURL string, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		Timeout:        2 * time.Second,
		MaxRetries:     0,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestFetchWeekSchedule_MapsGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/2025/weeks/1/games" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"games":[
			{"gameId":"2025-01-KC-BUF","homeTeamId":"KC","awayTeamId":"BUF","kickoffAt":"2025-09-07T17:00:00Z","status":"scheduled"},
			{"gameId":"","homeTeamId":"X","awayTeamId":"Y","kickoffAt":"2025-09-07T20:00:00Z","status":"scheduled"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{})

	games, err := client.FetchWeekSchedule(context.Background(), 2025, 1)
	if err != nil {
		t.Fatalf("fetch week schedule: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 valid game (malformed row skipped), got %d", len(games))
	}

	game := games[0]
	if game.GameID != "2025-01-KC-BUF" {
		t.Fatalf("unexpected game id %s", game.GameID)
	}
	if game.Season != 2025 || game.Week != 1 {
		t.Fatalf("expected season/week stamped from request, got %d/%d", game.Season, game.Week)
	}
	if game.Status != "SCHEDULED" {
		t.Fatalf("expected normalized status SCHEDULED, got %s", game.Status)
	}
	if game.KickoffAt.IsZero() {
		t.Fatalf("expected parsed kickoff time")
	}
}

func TestFetchGameStats_MapsLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games/2025-01-KC-BUF/stats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"season":2025,"week":1,
			"playerLines":[{"playerId":"p-1","teamId":"KC","passingYards":300,"passingTds":3,"interceptionsThrown":1}],
			"defenseLines":[{"teamId":"KC","pointsAllowed":17,"sacks":4,"interceptionsMade":2}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{})

	got, err := client.FetchGameStats(context.Background(), "2025-01-KC-BUF")
	if err != nil {
		t.Fatalf("fetch game stats: %v", err)
	}
	if len(got.PlayerLines) != 1 || len(got.DefenseLines) != 1 {
		t.Fatalf("expected 1 player line and 1 defense line, got %d/%d", len(got.PlayerLines), len(got.DefenseLines))
	}

	line := got.PlayerLines[0]
	if line.PlayerID != "p-1" || line.GameID != "2025-01-KC-BUF" {
		t.Fatalf("unexpected player line identity %s/%s", line.PlayerID, line.GameID)
	}
	if line.PassingYards != 300 || line.PassingTDs != 3 || line.Interceptions != 1 {
		t.Fatalf("unexpected player line values: %+v", line)
	}

	defense := got.DefenseLines[0]
	if defense.TeamID != "KC" || defense.Sacks != 4 {
		t.Fatalf("unexpected defense line values: %+v", defense)
	}
}

func TestFetchWeekSchedule_NonRetryableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such season"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{})

	_, err := client.FetchWeekSchedule(context.Background(), 2025, 1)
	if err == nil {
		t.Fatalf("expected error for 404 response")
	}
}

func TestClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchWeekSchedule(context.Background(), 2025, i+1); err == nil {
			t.Fatalf("expected failure on attempt %d", i+1)
		}
	}

	before := hits.Load()
	_, err := client.FetchWeekSchedule(context.Background(), 2025, 3)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open circuit, got %v", err)
	}
	if hits.Load() != before {
		t.Fatalf("open circuit must not reach the provider")
	}
}
