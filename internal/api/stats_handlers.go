package api

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.StatsService.Dashboard(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleLeeches(w http.ResponseWriter, r *http.Request) {
	deckID, err := queryInt64(r, "deck_id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	leeches, err := s.StatsService.Leeches(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, leeches)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		handleError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.StatsService.DailyStats(r.Context(), from, to)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}
