package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode error response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"time":      time.Now().UTC().Format(time.RFC3339),
		"questions": s.deps.Catalog.Len(),
		"sessions":  s.deps.Registry.Len(),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	p, err := s.deps.Profiles.Load(r.Context(), user)
	if err != nil {
		s.log.Error("failed to load profile", "user", user, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	if p == nil {
		s.respondError(w, http.StatusNotFound, "profile_not_found", "no profile for user "+user)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	results, err := s.deps.Recorder.History(r.Context(), user, 20)
	if err != nil {
		s.log.Error("failed to list results", "user", user, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to list results")
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

type catalogResponse struct {
	SkillAreas []string `json:"skill_areas"`
	Counts     any      `json:"counts"`
	Questions  int      `json:"questions"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.deps.Catalog
	s.respondJSON(w, http.StatusOK, catalogResponse{
		SkillAreas: c.SkillAreas(),
		Counts:     c.CountBy(),
		Questions:  c.Len(),
	})
}
