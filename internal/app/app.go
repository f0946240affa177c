// Package app assembles the repositories, services, and HTTP surface into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/gridironhq/gridiron/external/statsfeed"
	"github.com/gridironhq/gridiron/internal/config"
	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/domain/lineup"
	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/domain/scoring"
	"github.com/gridironhq/gridiron/internal/domain/stats"
	"github.com/gridironhq/gridiron/internal/infrastructure/account"
	cacherepo "github.com/gridironhq/gridiron/internal/infrastructure/repository/cache"
	"github.com/gridironhq/gridiron/internal/infrastructure/repository/memory"
	"github.com/gridironhq/gridiron/internal/infrastructure/repository/postgres"
	"github.com/gridironhq/gridiron/internal/interfaces/httpapi"
	basecache "github.com/gridironhq/gridiron/internal/platform/cache"
	idgen "github.com/gridironhq/gridiron/internal/platform/id"
	"github.com/gridironhq/gridiron/internal/platform/logging"
	"github.com/gridironhq/gridiron/internal/platform/resilience"
	"github.com/gridironhq/gridiron/internal/usecase"
)

type repositories struct {
	leagues  league.Repository
	schedule schedule.Repository
	lineups  lineup.Store
	stats    stats.Repository
	close    func() error
}

// NewHTTPServer wires the full service. The returned cleanup releases the
// database pool and must run after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	leagueRepo := repos.leagues
	scheduleRepo := repos.schedule
	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		leagueRepo = cacherepo.NewLeagueRepository(leagueRepo, store)
		scheduleRepo = cacherepo.NewScheduleRepository(scheduleRepo, store)
	}

	leagueSvc := usecase.NewLeagueService(leagueRepo, idgen.NewRandomGenerator(), logger)

	lineupSvc := usecase.NewLineupService(leagueRepo, scheduleRepo, repos.lineups, logger)
	lineupSvc.SetLimits(cfg.SeasonWeeks, cfg.UsageCap)

	ingestionSvc := usecase.NewIngestionService(repos.stats, scoring.DefaultRules(), logger)

	reconcileSvc := usecase.NewReconcileService(repos.lineups, repos.stats, logger)
	reconcileSvc.SetMaxWorkers(cfg.ReconcileMaxWorkers)

	var feed usecase.StatsFeed
	if cfg.StatsFeedEnabled {
		feed = statsfeed.NewClient(statsfeed.ClientConfig{
			BaseURL:    cfg.StatsFeedBaseURL,
			Token:      cfg.StatsFeedToken,
			Timeout:    cfg.StatsFeedTimeout,
			MaxRetries: cfg.StatsFeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StatsFeedCircuitEnabled,
				FailureThreshold: cfg.StatsFeedCircuitFailureCount,
				OpenTimeout:      cfg.StatsFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.StatsFeedCircuitHalfOpenMaxReq,
			},
		})
	}
	syncSvc := usecase.NewSyncService(feed, scheduleRepo, ingestionSvc, logger)

	verifier := account.NewClient(account.ClientConfig{
		BaseURL:        cfg.AccountBaseURL,
		IntrospectPath: cfg.AccountIntrospectPath,
		Timeout:        cfg.AccountTimeout,
		CacheTTL:       cfg.AccountCacheTTL,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AccountCircuitEnabled,
			FailureThreshold: cfg.AccountCircuitFailureCount,
			OpenTimeout:      cfg.AccountCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
		},
	})

	handler := httpapi.NewHandler(leagueSvc, lineupSvc, syncSvc, reconcileSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = repos.close()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, repos.close, nil
}

// buildRepositories picks the persistence layer. An empty DB_URL selects the
// in-memory repositories with demo seed data so the service can run without
// infrastructure.
func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.DBURL == "" {
		logger.Info("persistence: in-memory repositories with seed data")

		leagueRepo := memory.NewLeagueRepository()
		for _, item := range memory.SeedLeagues() {
			if err := leagueRepo.Create(ctx, item); err != nil {
				return repositories{}, fmt.Errorf("seed leagues: %w", err)
			}
		}

		scheduleRepo := memory.NewScheduleRepository()
		if err := scheduleRepo.UpsertGames(ctx, memory.SeedGames()); err != nil {
			return repositories{}, fmt.Errorf("seed games: %w", err)
		}

		return repositories{
			leagues:  leagueRepo,
			schedule: scheduleRepo,
			lineups:  memory.NewLineupStore(),
			stats:    memory.NewStatsRepository(),
			close:    func() error { return nil },
		}, nil
	}

	db, err := connectPostgres(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	logger.Info("persistence: postgres", "db_name", dbNameFromURL(cfg.DBURL))

	return repositories{
		leagues:  postgres.NewLeagueRepository(db),
		schedule: postgres.NewScheduleRepository(db),
		lineups:  postgres.NewLineupRepository(db),
		stats:    postgres.NewStatsRepository(db),
		close:    db.Close,
	}, nil
}

func connectPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.ConnectContext(ctx, "postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
