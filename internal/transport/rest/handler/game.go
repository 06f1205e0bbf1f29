package handler

import (
	"arcadechat/internal/cache"
	"arcadechat/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// GameHandler handles typing-race game endpoints
type GameHandler struct {
	gameSvc *service.GameService
	results cache.ResultCache
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, results cache.ResultCache) *GameHandler {
	return &GameHandler{
		gameSvc: gameSvc,
		results: results,
	}
}

// JoinGameRequest is the request body for creating or joining a game
type JoinGameRequest struct {
	Nickname string `json:"nickname"`
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}

	result, err := h.gameSvc.CreateGame(r.Context(), req.Nickname)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Join handles POST /v1/games/{gameId}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}

	result, err := h.gameSvc.JoinGame(r.Context(), gameID, req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			writeError(w, http.StatusNotFound, "game not found")
		case errors.Is(err, service.ErrGameClosed):
			writeError(w, http.StatusConflict, "game is no longer open")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /v1/games/{gameId}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	game, err := h.gameSvc.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// Results handles GET /v1/games/{gameId}/results
func (h *GameHandler) Results(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	entries, err := h.results.Standings(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gameId":  gameID,
		"results": entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
