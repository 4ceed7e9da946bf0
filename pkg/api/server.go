// Package api exposes the personalization engine over a thin HTTP
// boundary. It does no business logic of its own; requests map directly
// onto the personalize service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/personalize"
	"github.com/hearthwise/homejourney/pkg/rules"
)

type Server struct {
	logger  *log.Logger
	service *personalize.Service
}

func NewServer(logger *log.Logger, service *personalize.Service) *Server {
	return &Server{logger: logger, service: service}
}

// Router builds the chi router with CORS enabled for browser clients.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		Debug:            false,
	}).Handler)

	router.Get("/healthz", s.handleHealth)
	router.Post("/personalize", s.handlePersonalize)
	router.Get("/content/search", s.handleSearch)

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type personalizeRequest struct {
	Flow    string            `json:"flow"`
	Answers map[string]string `json:"answers"`
	Limit   int               `json:"limit"`
}

func (s *Server) handlePersonalize(w http.ResponseWriter, r *http.Request) {
	var req personalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Unknown flows and non-positive limits are corrected, not rejected;
	// personalization is best-effort enrichment.
	flow := content.ParseFlow(req.Flow)
	result := s.service.Personalize(r.Context(), flow, rules.Answers(req.Answers), req.Limit)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	flow := content.ParseFlow(r.URL.Query().Get("flow"))
	query := r.URL.Query().Get("q")

	result, err := s.service.Search(r.Context(), flow, query)
	if err != nil {
		s.logger.Error("Search failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Encoding response failed", "error", err)
	}
}
