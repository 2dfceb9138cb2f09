package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Post("/", s.handleCreateDeck)
		r.Get("/{id}", s.handleGetDeck)
		r.Delete("/{id}", s.handleDeleteDeck)
		r.Post("/{id}/import", s.handleImportItems)
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Post("/", s.handleCreateItem)
		r.Get("/{id}", s.handleGetItem)
		r.Put("/{id}", s.handleUpdateItem)
		r.Delete("/{id}", s.handleDeleteItem)
		r.Post("/{id}/suspend", s.handleToggleSuspend)
		r.Post("/{id}/favorite", s.handleToggleFavorite)
	})

	r.Route("/study", func(r chi.Router) {
		r.Post("/", s.handleStartStudy)
		r.Get("/{sid}", s.handleGetStudy)
		r.Post("/{sid}/rate", s.handleRate)
		r.Get("/{sid}/summary", s.handleStudySummary)
	})

	r.Route("/quiz", func(r chi.Router) {
		r.Post("/", s.handleStartQuiz)
		r.Get("/{qid}", s.handleGetQuiz)
		r.Post("/{qid}/answers/{n}", s.handleAnswer)
		r.Get("/{qid}/results", s.handleQuizResults)
	})

	r.Route("/match", func(r chi.Router) {
		r.Post("/", s.handleStartMatch)
		r.Get("/{mid}", s.handleGetMatch)
		r.Post("/{mid}/pairs", s.handlePair)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/", s.handleDashboard)
		r.Get("/leeches", s.handleLeeches)
		r.Get("/daily", s.handleDailyStats)
	})

	return r
}
