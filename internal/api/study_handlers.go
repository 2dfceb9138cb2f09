package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashdeck/internal/services"
)

type rateRequest struct {
	Quality int `json:"quality"`
}

func (s *Server) handleStartStudy(w http.ResponseWriter, r *http.Request) {
	var req services.StudyRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	view, err := s.StudyService.StartSession(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	view, err := s.StudyService.GetSession(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.StudyService.Rate(r.Context(), chi.URLParam(r, "sid"), req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleStudySummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.StudyService.Summary(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sum)
}
