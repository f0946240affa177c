package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/domain/scoring"
	"github.com/gridironhq/gridiron/internal/domain/user"
	"github.com/gridironhq/gridiron/internal/infrastructure/repository/memory"
	idgen "github.com/gridironhq/gridiron/internal/platform/id"
	"github.com/gridironhq/gridiron/internal/platform/logging"
	"github.com/gridironhq/gridiron/internal/usecase"
)

const (
	testUserID   = "user-1"
	testLeagueID = "league-1"
	testJobToken = "job-secret"
)

type staticVerifier struct {
	userID string
}

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return user.Principal{}, fmt.Errorf("%w: empty token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: v.userID, Email: v.userID + "@example.com"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()

	leagueRepo := memory.NewLeagueRepository()
	scheduleRepo := memory.NewScheduleRepository()
	lineupStore := memory.NewLineupStore()
	statsRepo := memory.NewStatsRepository()

	now := time.Now().UTC()
	err := leagueRepo.Create(context.Background(), league.League{
		ID:          testLeagueID,
		Name:        "Test League",
		AdminUserID: testUserID,
		JoinCode:    "123456",
		Visible:     true,
		Members: []league.Member{
			{UserID: testUserID, TeamName: "Testers", JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed league: %v", err)
	}

	// Week 1 is still open, week 2 already kicked off.
	games := []schedule.Game{
		{GameID: "g-open", Season: 2025, Week: 1, HomeTeamID: "PHI", AwayTeamID: "DAL", KickoffAt: now.Add(48 * time.Hour), Status: schedule.StatusScheduled},
		{GameID: "g-locked", Season: 2025, Week: 2, HomeTeamID: "KC", AwayTeamID: "BUF", KickoffAt: now.Add(-48 * time.Hour), Status: schedule.StatusFinal},
	}
	if err := scheduleRepo.UpsertGames(context.Background(), games); err != nil {
		t.Fatalf("seed games: %v", err)
	}

	leagueService := usecase.NewLeagueService(leagueRepo, idgen.NewRandomGenerator(), logger)
	lineupService := usecase.NewLineupService(leagueRepo, scheduleRepo, lineupStore, logger)
	ingestion := usecase.NewIngestionService(statsRepo, scoring.DefaultRules(), logger)
	syncService := usecase.NewSyncService(nil, scheduleRepo, ingestion, logger)
	reconcileService := usecase.NewReconcileService(lineupStore, statsRepo, logger)

	handler := NewHandler(leagueService, lineupService, syncService, reconcileService, logger)
	return NewRouter(handler, staticVerifier{userID: testUserID}, logger, nil, testJobToken)
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSaveLineup_RoundTrip(t *testing.T) {
	router := newTestRouter(t)

	payload := `{"picks":[
		{"slot":"QB","entityId":"p-mahomes","kind":"player"},
		{"slot":"DEF","entityId":"PHI","kind":"team_unit"}
	]}`

	rec := doJSON(t, router, http.MethodPut, "/v1/leagues/"+testLeagueID+"/lineups/2025/1", "good-token", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var saved struct {
		Data lineupDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("unmarshal save response: %v", err)
	}
	if saved.Data.Complete {
		t.Fatalf("expected incomplete lineup with 2 of 8 slots filled")
	}
	if saved.Data.TotalPoints != nil {
		t.Fatalf("expected nil total points on a fresh save")
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/leagues/"+testLeagueID+"/lineups/2025/1", "good-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on read back, got %d", rec.Code)
	}

	var fetched struct {
		Data lineupDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal get response: %v", err)
	}
	if len(fetched.Data.Picks) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(fetched.Data.Picks))
	}
}

func TestSaveLineup_MissingAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/v1/leagues/"+testLeagueID+"/lineups/2025/1", "", `{"picks":[{"slot":"QB","entityId":"p-1","kind":"player"}]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestSaveLineup_DeadlinePassed(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/v1/leagues/"+testLeagueID+"/lineups/2025/2", "good-token", `{"picks":[{"slot":"QB","entityId":"p-1","kind":"player"}]}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for a locked week, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["status"].(string); got != "FAILED_PRECONDITION" {
		t.Fatalf("expected FAILED_PRECONDITION, got %v", errorObj["status"])
	}
}

func TestSaveLineup_RejectsUnknownSlot(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/v1/leagues/"+testLeagueID+"/lineups/2025/1", "good-token", `{"picks":[{"slot":"KICKER","entityId":"p-1","kind":"player"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSaveLineup_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/v1/leagues/"+testLeagueID+"/lineups/2025/1", "good-token", `{"picks":[],"bonus":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown payload field, got %d", rec.Code)
	}
}

func TestInternalJobs_TokenRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile", strings.NewReader(`{"season":2025,"week":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/reconcile", strings.NewReader(`{"season":2025,"week":1}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with job token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetLeague_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/leagues/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCreateAndJoinLeague(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/leagues", "good-token", `{"name":"Side League","teamName":"Admins","visible":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data leagueDetailDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.Data.AdminUserID != testUserID {
		t.Fatalf("expected admin %s, got %s", testUserID, created.Data.AdminUserID)
	}
	if len(created.Data.JoinCode) != 6 {
		t.Fatalf("expected a 6-digit join code, got %q", created.Data.JoinCode)
	}
}

func TestSyncWeekJob_FeedUnavailable(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-week", strings.NewReader(`{"season":2025,"week":1}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without a stats feed, got %d: %s", rec.Code, rec.Body.String())
	}
}
