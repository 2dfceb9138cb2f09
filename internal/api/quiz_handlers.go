package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/services"
)

type answerRequest struct {
	Answer string `json:"answer"`
}

type pairRequest struct {
	Front int `json:"front"`
	Back  int `json:"back"`
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req services.QuizRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	view, err := s.QuizService.StartQuiz(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.GetQuiz(r.Context(), chi.URLParam(r, "qid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "n")
	n, err := strconv.Atoi(raw)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid question index: "+raw))
		return
	}
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.QuizService.Answer(r.Context(), chi.URLParam(r, "qid"), n, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.QuizService.Results(r.Context(), chi.URLParam(r, "qid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	var req services.MatchRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	view, err := s.QuizService.StartMatch(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.GetMatch(r.Context(), chi.URLParam(r, "mid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}

func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.QuizService.Pair(r.Context(), chi.URLParam(r, "mid"), req.Front, req.Back)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}
