package httpapi

import "net/http"

const gameEventsPath = "/v1/game/events"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerRosterRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/playing-time", handler.GetPlayingTime)
	mux.HandleFunc("POST /v1/players/{playerID}/availability/toggle", handler.ToggleAvailability)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/game", handler.GetGame)
	mux.HandleFunc("GET /v1/game/history", handler.GetHistory)
	mux.HandleFunc("GET "+gameEventsPath, handler.StreamGameEvents)
	mux.HandleFunc("POST /v1/game/roster", handler.GenerateRoster)
	mux.HandleFunc("POST /v1/game/start", handler.StartGame)
	mux.HandleFunc("POST /v1/game/substitutions", handler.Substitute)
	mux.HandleFunc("POST /v1/game/quarters/advance", handler.AdvanceQuarter)
	mux.HandleFunc("POST /v1/game/goalie", handler.ConfirmGoalie)
	mux.HandleFunc("POST /v1/game/lineup/refresh", handler.RefreshLineup)
}

func registerSimulationRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/simulations", handler.RunSimulation)
}
