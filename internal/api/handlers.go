package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/skills"
)

// maxBodyBytes caps request bodies; code submissions are the largest.
const maxBodyBytes = 1 << 20

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}

// respondServiceError maps engine errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var cooldown *assessment.CooldownError
	switch {
	case errors.As(err, &cooldown):
		secs := int(time.Until(cooldown.Until).Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
		respondError(w, http.StatusTooManyRequests, "cooldown", err.Error())
	case errors.Is(err, assessment.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, assessment.ErrNotFound), errors.Is(err, skills.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, assessment.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", "assessment belongs to another user")
	case errors.Is(err, assessment.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	return true
}

func principal(w http.ResponseWriter, r *http.Request) (assessment.Principal, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return p, ok
}

func (s *Server) respondAssessment(w http.ResponseWriter, r *http.Request, status int, a *assessment.Assessment) {
	resp, err := toAssessmentResponse(a)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			respondError(w, http.StatusServiceUnavailable, "unhealthy", "database unreachable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req assessment.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Skill == "" {
		respondError(w, http.StatusBadRequest, "invalid_input", "skill is required")
		return
	}

	a, created, err := s.assessments.Create(r.Context(), p, req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respondAssessment(w, r, status, a)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := assessment.ListFilter{
		Status: assessment.Status(q.Get("status")),
	}
	if ref := q.Get("skill"); ref != "" {
		skill, err := s.catalog.Find(ref)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		f.SkillID = skill.ID
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	list, err := s.assessments.List(r.Context(), p, f)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	resp, err := toAssessmentResponses(list)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	a, err := s.assessments.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.respondAssessment(w, r, http.StatusOK, a)
}

func (s *Server) handleStartAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	a, err := s.assessments.Start(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.respondAssessment(w, r, http.StatusOK, a)
}

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var sub assessment.Submission
	if !decodeBody(w, r, &sub) {
		return
	}

	a, res, err := s.assessments.Submit(r.Context(), p, chi.URLParam(r, "id"), sub)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	dto, err := toAssessmentResponse(a)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, SubmitResponse{Assessment: dto, Result: res})
}

func (s *Server) handleExpireAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	a, err := s.assessments.Expire(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	s.respondAssessment(w, r, http.StatusOK, a)
}

func (s *Server) handleProfileSkills(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	list, err := s.profiles.Skills(r.Context(), p.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	all := s.catalog.All()
	if cat := r.URL.Query().Get("category"); cat != "" {
		filtered := all[:0:0]
		for _, sk := range all {
			if string(sk.Category) == cat {
				filtered = append(filtered, sk)
			}
		}
		all = filtered
	}
	respondJSON(w, http.StatusOK, all)
}

func (s *Server) handleSkillStats(w http.ResponseWriter, r *http.Request) {
	skill, err := s.catalog.Find(chi.URLParam(r, "skill"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	st, err := s.stats.SkillStats(r.Context(), skill.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if st == nil {
		respondError(w, http.StatusNotFound, "not_found", "no assessments recorded for "+skill.Name)
		return
	}
	respondJSON(w, http.StatusOK, toSkillStatsResponse(*st))
}

func (s *Server) handleAllSkillStats(w http.ResponseWriter, r *http.Request) {
	list, err := s.stats.AllSkillStats(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]SkillStatsResponse, 0, len(list))
	for _, st := range list {
		out = append(out, toSkillStatsResponse(st))
	}
	respondJSON(w, http.StatusOK, out)
}
