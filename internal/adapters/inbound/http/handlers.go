package http

import (
	"encoding/json"
	"net/http"

	"github.com/cleitonmarx/nowapi/internal/domain"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *NowServer) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *NowServer) now(w http.ResponseWriter, r *http.Request) {
	text, err := s.GetCurrentTime.Text(r.Context(), s.timezone(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *NowServer) nowJSON(w http.ResponseWriter, r *http.Request) {
	view, err := s.GetCurrentTime.JSON(r.Context(), s.timezone(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// timezone returns the tz query parameter, falling back to the configured default.
func (s *NowServer) timezone(r *http.Request) string {
	if tz := r.URL.Query().Get("tz"); tz != "" {
		return tz
	}
	if s.DefaultTZ != "" {
		return s.DefaultTZ
	}
	return domain.DefaultTimezone
}

func (s *NowServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsInvalidTimezone(err) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	s.Logger.Printf("NowServer: %s %s failed: request_id=%s error=%v", r.Method, r.URL.Path, RequestIDFromContext(r.Context()), err)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Detail: http.StatusText(http.StatusInternalServerError)})
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body = []byte(`{"detail":"Internal Server Error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
