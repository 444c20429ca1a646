package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/pzwatch/internal/domain/players"
)

type playerResponse struct {
	Player string `json:"player"`
	players.Record
}

// PlayerHandler serves one player's aggregate record.
type PlayerHandler struct {
	views ViewProvider
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(views ViewProvider) *PlayerHandler {
	return &PlayerHandler{views: views}
}

// HandleGetPlayer handles GET /players/{username} requests.
func (h *PlayerHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/players/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	for _, e := range h.views.View().Players {
		if e.Subject == name {
			writeJSON(w, http.StatusOK, playerResponse{Player: e.Subject, Record: e.Record})
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrNotFound, name))
}
