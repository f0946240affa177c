package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironhq/gridiron/internal/domain/lineup"
	"github.com/gridironhq/gridiron/internal/usecase"
)

func (h *Handler) GetMyLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyLineup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	season, week, err := parseSeasonWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, exists, err := h.lineupService.GetByKey(ctx, principal.UserID, leagueID, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get lineup failed",
			"user_id", principal.UserID,
			"league_id", leagueID,
			"season", season,
			"week", week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(item))
}

func (h *Handler) SaveMyLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveMyLineup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	season, week, err := parseSeasonWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req lineupUpsertRequest
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

	picks := make([]usecase.PickInput, 0, len(req.Picks))
	for _, p := range req.Picks {
		picks = append(picks, usecase.PickInput{
			Slot:     p.Slot,
			EntityID: p.EntityID,
			Kind:     p.Kind,
		})
	}

	item, err := h.lineupService.Save(ctx, usecase.SaveLineupInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		Season:   season,
		Week:     week,
		Picks:    picks,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save lineup failed",
			"user_id", principal.UserID,
			"league_id", leagueID,
			"season", season,
			"week", week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(item))
}

func parseSeasonWeek(r *http.Request) (int, int, error) {
	season, err := strconv.Atoi(strings.TrimSpace(r.PathValue("season")))
	if err != nil || season <= 0 {
		return 0, 0, fmt.Errorf("%w: season must be a positive integer", usecase.ErrInvalidInput)
	}
	week, err := strconv.Atoi(strings.TrimSpace(r.PathValue("week")))
	if err != nil || week <= 0 {
		return 0, 0, fmt.Errorf("%w: week must be a positive integer", usecase.ErrInvalidInput)
	}
	return season, week, nil
}

type lineupUpsertRequest struct {
	Picks []lineupPickRequest `json:"picks" validate:"required,min=1,max=8,dive"`
}

type lineupPickRequest struct {
	Slot     string `json:"slot" validate:"required"`
	EntityID string `json:"entityId" validate:"required"`
	Kind     string `json:"kind" validate:"required"`
}

type lineupDTO struct {
	UserID      string          `json:"userId"`
	LeagueID    string          `json:"leagueId"`
	Season      int             `json:"season"`
	Week        int             `json:"week"`
	Picks       []lineupPickDTO `json:"picks"`
	Complete    bool            `json:"complete"`
	TotalPoints *float64        `json:"totalPoints"`
	UpdatedAt   string          `json:"updatedAt"`
}

type lineupPickDTO struct {
	Slot     string `json:"slot"`
	EntityID string `json:"entityId"`
	Kind     string `json:"kind"`
	PickedAt string `json:"pickedAt"`
}

func lineupToDTO(item lineup.WeeklyLineup) lineupDTO {
	picks := make([]lineupPickDTO, 0, len(item.Picks))
	for slot, pick := range item.Picks {
		picks = append(picks, lineupPickDTO{
			Slot:     string(slot),
			EntityID: pick.EntityID,
			Kind:     string(pick.Kind),
			PickedAt: pick.PickedAt.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].Slot < picks[j].Slot })

	return lineupDTO{
		UserID:      item.UserID,
		LeagueID:    item.LeagueID,
		Season:      item.Season,
		Week:        item.Week,
		Picks:       picks,
		Complete:    item.Complete,
		TotalPoints: item.TotalPoints,
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
