package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/domain/scoring"
	"github.com/gridironhq/gridiron/internal/domain/stats"
	"github.com/gridironhq/gridiron/internal/platform/logging"
)

// IngestGameInput carries one finished game's raw statistics: per-player
// offensive lines plus the team-level defensive lines for both sides.
type IngestGameInput struct {
	Game         schedule.Game
	PlayerLines  []stats.PlayerLine
	DefenseLines []stats.TeamDefenseLine
}

type IngestGameResult struct {
	GameID      string `json:"game_id"`
	PlayerStats int    `json:"player_stats"`
	TeamStats   int    `json:"team_stats"`
}

// IngestionService turns raw game statistics into persisted per-entity
// fantasy-point records. Points are computed once here, at ingestion time;
// reconciliation later only reads them.
type IngestionService struct {
	statsRepo stats.Repository
	rules     scoring.Rules
	logger    *logging.Logger
	now       func() time.Time
}

func NewIngestionService(statsRepo stats.Repository, rules scoring.Rules, logger *logging.Logger) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		statsRepo: statsRepo,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
	}
}

// IngestGame scores and persists one game's player and team-unit stats.
func (s *IngestionService) IngestGame(ctx context.Context, input IngestGameInput) (IngestGameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestGame")
	defer span.End()

	game := input.Game
	game.GameID = strings.TrimSpace(game.GameID)
	if game.GameID == "" {
		return IngestGameResult{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if game.Season <= 0 || game.Week <= 0 {
		return IngestGameResult{}, fmt.Errorf("%w: game season and week are required", ErrInvalidInput)
	}
	if game.HomeTeamID == "" || game.AwayTeamID == "" {
		return IngestGameResult{}, fmt.Errorf("%w: game team ids are required", ErrInvalidInput)
	}

	now := s.now().UTC()

	playerStats := make([]stats.PlayerGameStat, 0, len(input.PlayerLines))
	for _, line := range input.PlayerLines {
		if line.PlayerID == "" {
			return IngestGameResult{}, fmt.Errorf("%w: player line without player id in game=%s", ErrInvalidInput, game.GameID)
		}
		if line.TeamID != game.HomeTeamID && line.TeamID != game.AwayTeamID {
			return IngestGameResult{}, fmt.Errorf("%w: player=%s team=%s did not play in game=%s", ErrInvalidInput, line.PlayerID, line.TeamID, game.GameID)
		}
		line.GameID = game.GameID
		line.Season = game.Season
		line.Week = game.Week

		playerStats = append(playerStats, stats.PlayerGameStat{
			Line:          line,
			FantasyPoints: scoring.PlayerPoints(line, s.rules),
			IngestedAt:    now,
		})
	}

	defenseByTeam := make(map[string]stats.TeamDefenseLine, len(input.DefenseLines))
	for _, line := range input.DefenseLines {
		defenseByTeam[line.TeamID] = line
	}

	teamStats := make([]stats.TeamGameStat, 0, 2)
	for _, teamID := range []string{game.HomeTeamID, game.AwayTeamID} {
		agg := scoring.AggregateTeamGame(input.PlayerLines, teamID)
		defense := defenseByTeam[teamID]

		teamStats = append(teamStats, stats.TeamGameStat{
			TeamID:             teamID,
			GameID:             game.GameID,
			Season:             game.Season,
			Week:               game.Week,
			PassingYards:       agg.PassingYards,
			PassingTDs:         agg.PassingTDs,
			InterceptionsThr:   agg.InterceptionsThrown,
			RushingYards:       agg.RushingYards,
			RushingTDs:         agg.RushingTDs,
			ExtraPointsMade:    agg.ExtraPointsMade,
			FieldGoalsMade:     agg.FieldGoalsMade,
			ReturnTDs:          agg.ReturnTDs,
			PointsAllowed:      defense.PointsAllowed,
			Sacks:              defense.Sacks,
			InterceptionsMd:    defense.InterceptionsMd,
			FumblesRecovered:   defense.FumblesRecovered,
			Safeties:           defense.Safeties,
			DefensiveTDs:       defense.DefensiveTDs,
			XPReturns:          defense.XPReturns,
			PassingPoints:      scoring.PassingOffensePoints(agg, s.rules),
			RushingPoints:      scoring.RushingOffensePoints(agg, s.rules),
			DefensePoints:      scoring.DefensePoints(defense, agg.ReturnTDs, s.rules),
			SpecialTeamsPoints: scoring.SpecialTeamsPoints(agg, defense.XPReturns, s.rules),
			IngestedAt:         now,
		})
	}

	if len(playerStats) > 0 {
		if err := s.statsRepo.UpsertPlayerGameStats(ctx, playerStats); err != nil {
			return IngestGameResult{}, fmt.Errorf("upsert player game stats game=%s: %w", game.GameID, err)
		}
	}
	if err := s.statsRepo.UpsertTeamGameStats(ctx, teamStats); err != nil {
		return IngestGameResult{}, fmt.Errorf("upsert team game stats game=%s: %w", game.GameID, err)
	}

	s.logger.InfoContext(ctx, "game stats ingested",
		"game_id", game.GameID,
		"season", game.Season,
		"week", game.Week,
		"player_stats", len(playerStats),
		"team_stats", len(teamStats),
	)

	return IngestGameResult{
		GameID:      game.GameID,
		PlayerStats: len(playerStats),
		TeamStats:   len(teamStats),
	}, nil
}
