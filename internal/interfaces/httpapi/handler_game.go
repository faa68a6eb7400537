package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/game"
)

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	state, err := h.gameService.GetState(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get game failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameStateToDTO(state))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHistory")
	defer span.End()

	records, err := h.gameService.GetHistory(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get game history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recordsToDTO(records))
}

func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateRoster")
	defer span.End()

	var req goalieRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	active, err := h.gameService.GenerateInitialRoster(ctx, req.GoalieID)
	if err != nil {
		h.logger.WarnContext(ctx, "generate roster failed", "goalie_id", req.GoalieID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(active))
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartGame")
	defer span.End()

	state, err := h.gameService.StartGame(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "start game failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameStateToDTO(state))
}

func (h *Handler) Substitute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Substitute")
	defer span.End()

	active, sub, err := h.gameService.Substitute(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "substitution failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, substitutionDTO{
		Lineup: lineupToDTO(active),
		Out:    playersToDTO(sub.Out),
		In:     playersToDTO(sub.In),
	})
}

func (h *Handler) AdvanceQuarter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdvanceQuarter")
	defer span.End()

	state, ended, err := h.gameService.AdvanceQuarter(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "advance quarter failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, advanceQuarterDTO{
		Ended: ended,
		State: gameStateToDTO(state),
	})
}

func (h *Handler) ConfirmGoalie(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmGoalie")
	defer span.End()

	var req goalieRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	active, err := h.gameService.ConfirmGoalie(ctx, req.GoalieID)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm goalie failed", "goalie_id", req.GoalieID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(active))
}

func (h *Handler) RefreshLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshLineup")
	defer span.End()

	active, err := h.gameService.RefreshCurrentLineup(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh lineup failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(active))
}

// StreamGameEvents upgrades to a websocket that first receives the current
// state and then every game event published after it.
func (h *Handler) StreamGameEvents(w http.ResponseWriter, r *http.Request) {
	h.events.Serve(w, r, func(ctx context.Context, attach func(initial gameEventDTO) error) error {
		return h.gameService.Snapshot(ctx, func(state game.State) error {
			return attach(gameEventDTO{
				Type:  eventSnapshot,
				At:    formatTime(time.Now()),
				State: gameStateToDTO(state),
			})
		})
	})
}
