package api

import (
	"net/http"
	"time"

	service "github.com/okian/pzwatch/internal/app"
)

type statsResponse struct {
	service.Stats
	Cursors   map[string]uint64 `json:"cursors"`
	Published time.Time         `json:"published_at"`
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	views ViewProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(views ViewProvider) *StatsHandler {
	return &StatsHandler{views: views}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	v := h.views.View()
	writeJSON(w, http.StatusOK, statsResponse{
		Stats:     v.Stats,
		Cursors:   v.Cursors,
		Published: v.Published,
	})
}
