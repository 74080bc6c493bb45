package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taptowin/taptowin/internal/api/request"
	"github.com/taptowin/taptowin/internal/api/response"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/player"
)

// PlayerHandler handles player state endpoints
type PlayerHandler struct {
	players *player.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *player.Controller) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var snap *model.Snapshot
	if req.Snapshot != nil {
		snap = req.Snapshot.ToModel()
	}

	state, err := h.players.CreatePlayer(r.Context(), model.PlayerID(req.PlayerID), snap)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerStateFromModel(state))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	state, err := h.players.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(state))
}

// Save handles PUT /api/v1/players/{id}. The response carries the stored
// record, reconciled against any newer remote copy, and its last_synced_at
// is the client's acknowledgement timestamp.
func (h *PlayerHandler) Save(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req request.SavePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.State.PlayerID != "" && req.State.PlayerID != id {
		WriteError(w, NewInvalidRequestError("player_id does not match URL"))
		return
	}
	req.State.PlayerID = id

	state, err := h.players.SavePlayer(r.Context(), req.State.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(state))
}

// Reset handles POST /api/v1/players/{id}/reset
func (h *PlayerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	state, err := h.players.ResetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStateFromModel(state))
}
