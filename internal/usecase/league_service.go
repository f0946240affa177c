package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/league"
	idgen "github.com/gridironhq/gridiron/internal/platform/id"
	"github.com/gridironhq/gridiron/internal/platform/logging"
)

const maxLeagueNameLength = 100

type CreateLeagueInput struct {
	Name        string
	AdminUserID string
	TeamName    string
	Visible     bool
}

type JoinLeagueInput struct {
	JoinCode string
	UserID   string
	TeamName string
}

// LeagueService owns league creation and membership. The admin is always
// seeded as the first member; the member set never holds duplicates.
type LeagueService struct {
	leagueRepo league.Repository
	ids        idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, ids idgen.Generator, logger *logging.Logger) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		leagueRepo: leagueRepo,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.AdminUserID = strings.TrimSpace(input.AdminUserID)
	input.TeamName = strings.TrimSpace(input.TeamName)

	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	if len(input.Name) > maxLeagueNameLength {
		return league.League{}, fmt.Errorf("%w: league name cannot exceed %d characters", ErrInvalidInput, maxLeagueNameLength)
	}
	if input.AdminUserID == "" {
		return league.League{}, fmt.Errorf("%w: admin user id is required", ErrInvalidInput)
	}
	if input.TeamName == "" {
		return league.League{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	leagueID, err := s.ids.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}
	joinCode, err := s.ids.NewJoinCode()
	if err != nil {
		return league.League{}, fmt.Errorf("generate join code: %w", err)
	}

	now := s.now().UTC()
	item := league.League{
		ID:          leagueID,
		Name:        input.Name,
		AdminUserID: input.AdminUserID,
		JoinCode:    joinCode,
		Visible:     input.Visible,
		Members: []league.Member{
			{UserID: input.AdminUserID, TeamName: input.TeamName, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.ValidateBasic(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}

	if err := s.leagueRepo.Create(ctx, item); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	s.logger.InfoContext(ctx, "league created", "league_id", item.ID, "admin_user_id", item.AdminUserID)
	return item, nil
}

func (s *LeagueService) JoinByCode(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinByCode")
	defer span.End()

	input.JoinCode = strings.TrimSpace(input.JoinCode)
	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamName = strings.TrimSpace(input.TeamName)

	if len(input.JoinCode) != 6 {
		return league.League{}, fmt.Errorf("%w: join code must be 6 digits", ErrInvalidInput)
	}
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.TeamName == "" {
		return league.League{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByJoinCode(ctx, input.JoinCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by join code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: no league for join code", ErrNotFound)
	}
	if item.HasMember(input.UserID) {
		return league.League{}, fmt.Errorf("%w: user is already a member of league=%s", ErrInvalidInput, item.ID)
	}

	member := league.Member{
		UserID:   input.UserID,
		TeamName: input.TeamName,
		JoinedAt: s.now().UTC(),
	}
	if err := s.leagueRepo.AddMember(ctx, item.ID, member); err != nil {
		return league.League{}, fmt.Errorf("add league member: %w", err)
	}

	item.Members = append(item.Members, member)
	if err := item.ValidateBasic(); err != nil {
		return league.League{}, fmt.Errorf("%w: league=%s after join: %v", ErrDataIntegrity, item.ID, err)
	}

	s.logger.InfoContext(ctx, "league joined", "league_id", item.ID, "user_id", input.UserID)
	return item, nil
}

func (s *LeagueService) GetByID(ctx context.Context, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetByID")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	if err := item.ValidateBasic(); err != nil {
		return league.League{}, fmt.Errorf("%w: league=%s: %v", ErrDataIntegrity, leagueID, err)
	}

	return item, nil
}

func (s *LeagueService) List(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.List")
	defer span.End()

	items, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return items, nil
}
