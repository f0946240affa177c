package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironhq/gridiron/internal/usecase"
)

func (h *Handler) RunSyncWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncWeekJob")
	defer span.End()

	var req syncWeekJobRequest
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

	result, err := h.syncService.SyncWeek(ctx, req.Season, req.Week)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync week job failed", "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReconcileJob")
	defer span.End()

	var req reconcileJobRequest
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

	result, err := h.reconcileService.Reconcile(ctx, usecase.ReconcileInput{
		Season:     req.Season,
		Week:       req.Week,
		LeagueID:   req.LeagueID,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "reconcile job failed", "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type syncWeekJobRequest struct {
	Season int `json:"season" validate:"required,min=1"`
	Week   int `json:"week" validate:"required,min=1"`
}

type reconcileJobRequest struct {
	Season     int    `json:"season" validate:"required,min=1"`
	Week       int    `json:"week" validate:"required,min=1"`
	LeagueID   string `json:"leagueId"`
	MaxWorkers int    `json:"maxWorkers" validate:"min=0,max=1024"`
}
