package httpapi

import (
	"net/http"

	"github.com/riskibarqy/soccer-rotation/internal/usecase"
)

func (h *Handler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSimulation")
	defer span.End()

	var req simulationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.simulationService.Run(ctx, usecase.SimulationInput{
		Games: req.Games,
		Seed:  req.Seed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "simulation failed", "games", req.Games, "seed", req.Seed, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, simulationToDTO(result))
}
