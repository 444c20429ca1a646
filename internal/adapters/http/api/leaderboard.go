package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/pzwatch/internal/domain/ranking"
)

// leaderboardRow is one ranked player.
type leaderboardRow struct {
	Rank    int     `json:"rank"`
	Player  string  `json:"player"`
	Value   float64 `json:"value"`
	Deaths  uint    `json:"deaths"`
	Alive   bool    `json:"alive"`
	SteamID string  `json:"steam_id,omitempty"`
}

type leaderboardResponse struct {
	Board string           `json:"board"`
	Rows  []leaderboardRow `json:"rows"`
	Total int              `json:"tracked_players"`
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	views    ViewProvider
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(views ViewProvider, maxLimit int) *LeaderboardHandler {
	if maxLimit < 1 {
		maxLimit = ranking.BoardSize
	}
	return &LeaderboardHandler{
		views:    views,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?type=B&limit=N requests.
// type defaults to death and limit to the size of a posted board.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	board, ok := ranking.ParseBoard(q.Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_board", fmt.Errorf("%w: %q", ErrUnknownBoard, q.Get("type")))
		return
	}

	n := ranking.BoardSize
	if s := q.Get("limit"); s != "" {
		var err error
		if n, err = strconv.Atoi(s); err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit exceeds %d", ErrBadRequest, h.maxLimit))
		return
	}

	v := h.views.View()
	rows := ranking.Rank(board, v.Players, n)
	out := leaderboardResponse{
		Board: board.String(),
		Rows:  make([]leaderboardRow, 0, len(rows)),
		Total: len(v.Players),
	}
	for i, row := range rows {
		out.Rows = append(out.Rows, leaderboardRow{
			Rank:    i + 1,
			Player:  row.Subject,
			Value:   row.Value,
			Deaths:  row.Record.TotalDeaths,
			Alive:   row.Record.CurrentCharacter.Alive,
			SteamID: row.Record.SteamID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
