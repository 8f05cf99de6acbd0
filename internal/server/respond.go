package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/storage"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Detail: message})
}

// respondStoreError maps storage rule violations onto status codes and hides
// everything else behind a 500.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var se *storage.Error
	if errors.As(err, &se) {
		respondError(w, se.Message, statusForKind(se.Kind))
		return
	}
	s.log.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	respondError(w, "Internal server error", http.StatusInternalServerError)
}

func statusForKind(k storage.Kind) int {
	switch k {
	case storage.KindNotFound:
		return http.StatusNotFound
	case storage.KindInvalid:
		return http.StatusBadRequest
	case storage.KindConflict:
		return http.StatusConflict
	case storage.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses a numeric URL parameter, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		respondError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// actorID reads the acting user from the X-Actor-ID header. ok is false when
// the header is absent; a malformed value is reported as -1.
func actorID(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(constants.HeaderActorID))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return -1, true
	}
	return v, true
}

// requireActor answers 401 unless a valid X-Actor-ID is present.
func requireActor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	actor, ok := actorID(r)
	if !ok || actor < 0 {
		respondError(w, "X-Actor-ID header required", http.StatusUnauthorized)
		return 0, false
	}
	return actor, true
}

// actingAs rejects a request whose X-Actor-ID names someone other than owner.
// Requests without the header are let through.
func actingAs(w http.ResponseWriter, r *http.Request, owner int64) bool {
	actor, ok := actorID(r)
	if !ok {
		return true
	}
	if actor != owner {
		respondError(w, "You can only act on your own records", http.StatusForbidden)
		return false
	}
	return true
}

func queryID(r *http.Request, name string) (int64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}
