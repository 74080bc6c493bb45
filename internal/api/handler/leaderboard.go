package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/taptowin/taptowin/internal/api/response"
	"github.com/taptowin/taptowin/internal/model"
	"github.com/taptowin/taptowin/internal/services/leaderboard"
)

const defaultLeaderboardLimit = 10

// LeaderboardHandler handles leaderboard and stats endpoints
type LeaderboardHandler struct {
	leaderboard *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(lb *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: lb,
	}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.TopPlayers(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	total, err := h.leaderboard.TotalRanked(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.LeaderboardResponse{
		Entries:     make([]response.LeaderboardEntry, len(entries)),
		TotalRanked: total,
	}
	for i, e := range entries {
		resp.Entries[i] = response.LeaderboardEntryFromModel(e)
	}

	response.JSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats
func (h *LeaderboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leaderboard.GlobalStats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GlobalStatsFromModel(stats))
}

// Rank handles GET /api/v1/players/{id}/rank
func (h *LeaderboardHandler) Rank(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	info, err := h.leaderboard.PlayerRank(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerRankFromModel(info))
}
