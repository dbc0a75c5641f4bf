package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/csopt/internal/store"
)

// envelope is the shape of every response body. Success carries Data and no Error.
type envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

var errInvalidID = errors.New("invalid id")

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any, message string) {
	respond(w, status, envelope{Data: data, Message: message})
}

func respondMessage(w http.ResponseWriter, message string) {
	respond(w, http.StatusOK, envelope{Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Error: message})
}

func respondMissing(w http.ResponseWriter, fields []string) {
	respondError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(fields, ", "))
}

// storeError maps a store failure onto 404, 409 or a generic 500. The
// underlying error is only logged.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, what+" already exists")
	default:
		s.logger.Error("store error",
			"entity", what,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "Failed to process "+strings.ToLower(what))
	}
}

// upstreamError reports a model or parse failure with its message embedded.
func (s *Server) upstreamError(w http.ResponseWriter, err error, prefix string) {
	s.logger.Error(prefix, "error", err)
	respondError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", prefix, err))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return false
	}
	return true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// pathID reads the {id} URL parameter, answering 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
