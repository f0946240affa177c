package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/usecase"
)

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaguePublicDTO, 0, len(leagues))
	for _, item := range leagues {
		items = append(items, leagueToPublicDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	item, err := h.leagueService.GetByID(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDetailDTO(item))
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createLeagueRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.Create(ctx, usecase.CreateLeagueInput{
		Name:        req.Name,
		AdminUserID: principal.UserID,
		TeamName:    req.TeamName,
		Visible:     req.Visible,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDetailDTO(item))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinLeagueRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.leagueService.JoinByCode(ctx, usecase.JoinLeagueInput{
		JoinCode: req.JoinCode,
		UserID:   principal.UserID,
		TeamName: req.TeamName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDetailDTO(item))
}

type createLeagueRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	TeamName string `json:"teamName" validate:"required,max=100"`
	Visible  bool   `json:"visible"`
}

type joinLeagueRequest struct {
	JoinCode string `json:"joinCode" validate:"required,len=6,numeric"`
	TeamName string `json:"teamName" validate:"required,max=100"`
}

type leaguePublicDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
	CreatedAt   string `json:"createdAt"`
}

type leagueDetailDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	AdminUserID string            `json:"adminUserId"`
	JoinCode    string            `json:"joinCode"`
	Visible     bool              `json:"visible"`
	Members     []leagueMemberDTO `json:"members"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

type leagueMemberDTO struct {
	UserID      string  `json:"userId"`
	TeamName    string  `json:"teamName"`
	TotalPoints float64 `json:"totalPoints"`
	JoinedAt    string  `json:"joinedAt"`
}

func leagueToPublicDTO(v league.League) leaguePublicDTO {
	return leaguePublicDTO{
		ID:          v.ID,
		Name:        v.Name,
		MemberCount: len(v.Members),
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func leagueToDetailDTO(v league.League) leagueDetailDTO {
	members := make([]leagueMemberDTO, 0, len(v.Members))
	for _, m := range v.Members {
		members = append(members, leagueMemberDTO{
			UserID:      m.UserID,
			TeamName:    m.TeamName,
			TotalPoints: m.TotalPoints,
			JoinedAt:    m.JoinedAt.UTC().Format(time.RFC3339),
		})
	}

	return leagueDetailDTO{
		ID:          v.ID,
		Name:        v.Name,
		AdminUserID: v.AdminUserID,
		JoinCode:    v.JoinCode,
		Visible:     v.Visible,
		Members:     members,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
