package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	players, err := h.rosterService.SearchPlayers(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleAvailability")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, err := h.rosterService.ToggleAvailability(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "toggle availability failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func (h *Handler) GetPlayingTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayingTime")
	defer span.End()

	items, err := h.gameService.PlayingTime(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get playing time failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playingTimeToDTO(items))
}
