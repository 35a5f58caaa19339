package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/matcher"
	"github.com/harborview-living/directory-cli/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := s.store.ListCommunities(r.Context())
	if err != nil {
		serverError(w, "list communities", err)
		return
	}
	if communities == nil {
		communities = []model.Community{}
	}
	writeJSON(w, http.StatusOK, communities)
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	zip, ok := matcher.NormalizeZip(r.URL.Query().Get("zip"))
	if !ok {
		writeError(w, http.StatusBadRequest, "zip must be a 5-digit US zip code")
		return
	}

	opts := matcher.Options{RadiusMiles: s.opts.RadiusMiles, MaxResults: s.opts.MaxResults}
	if v := r.URL.Query().Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "radius must be a number")
			return
		}
		opts.RadiusMiles = radius
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		opts.MaxResults = limit
	}

	communities, err := s.store.ListCommunities(r.Context())
	if err != nil {
		serverError(w, "list communities", err)
		return
	}

	nearby, err := s.matcher.Nearby(r.Context(), zip, communities, opts)
	if err != nil {
		serverError(w, "nearby search", err)
		return
	}

	writeJSON(w, http.StatusOK, nearby)
}

func (s *Server) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bank.Questions())
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers model.AssessmentAnswers `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	communities, err := s.store.ListCommunities(r.Context())
	if err != nil {
		serverError(w, "list communities", err)
		return
	}

	rec, err := s.scorer.Score(req.Answers, communities)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName      string                `json:"first_name"`
		LastName       string                `json:"last_name"`
		Email          string                `json:"email"`
		Phone          string                `json:"phone"`
		Zip            string                `json:"zip"`
		Recommendation *model.Recommendation `json:"recommendation,omitempty"`
		CommunityIDs   []string              `json:"community_ids,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if problems := validateLead(req.FirstName, req.LastName, req.Email); len(problems) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(problems, "; "))
		return
	}

	lead := model.Lead{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Recommendation: req.Recommendation,
		CommunityIDs:   req.CommunityIDs,
	}
	if zip, ok := matcher.NormalizeZip(req.Zip); ok {
		lead.Zip = zip
	}

	created, err := s.store.CreateLead(r.Context(), lead)
	if err != nil {
		serverError(w, "create lead", err)
		return
	}

	zap.L().Info("lead captured",
		zap.String("lead_id", created.ID),
		zap.String("zip", created.Zip),
	)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := s.store.GetLead(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func validateLead(firstName, lastName, email string) []string {
	var problems []string
	if strings.TrimSpace(firstName) == "" {
		problems = append(problems, "first_name is required")
	}
	if strings.TrimSpace(lastName) == "" {
		problems = append(problems, "last_name is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		problems = append(problems, "email is required")
	} else if !strings.Contains(email[1:], "@") || strings.HasSuffix(email, "@") {
		problems = append(problems, "email is invalid")
	}
	return problems
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, op string, err error) {
	zap.L().Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// requestLogger logs each request at debug with method, path, and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
