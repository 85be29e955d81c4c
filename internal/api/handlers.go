package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"health-advisor/internal/advice"
	"health-advisor/internal/apperr"
)

const (
	userIDHeader = "X-User-Id"
	maxBodyBytes = 1 << 20
)

type adviceRequest struct {
	Issue string `json:"issue"`
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	// An empty body is treated like a missing issue.
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user := advice.UserID(r.Header.Get(userIDHeader))
	res, err := s.advisor.Advise(r.Context(), user, req.Issue)
	if err != nil {
		if statusFor(apperr.KindOf(err)) >= http.StatusInternalServerError {
			s.log.Error("health advice failed",
				zap.String("user", user),
				zap.String("request_id", requestIDFrom(r.Context())),
				zap.Error(err))
		}
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: res.Advice})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := advice.UserID(r.Header.Get(userIDHeader))
	writeJSON(w, http.StatusOK, s.advisor.History(r.Context(), user))
}

// handleDeleteHistory accepts the index as a path segment or as ?index=N.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	if raw == "" {
		raw = r.URL.Query().Get("index")
	}
	idx, ok := parseIndex(raw)
	if !ok {
		writeAppError(w, apperr.New(apperr.NotFound, "History item not found"))
		return
	}

	user := advice.UserID(r.Header.Get(userIDHeader))
	if err := s.advisor.DeleteHistory(r.Context(), user, idx); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleKeyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.advisor.Status())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// parseIndex reads an optionally signed run of leading digits and ignores
// whatever follows, so "1abc" and "2.5" address 1 and 2.
func parseIndex(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
