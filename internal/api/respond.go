package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/errs"
	"shareit/internal/validate"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unexpected error")
		writeError(w, status, "internal server error")
		return
	}

	s.logger.Warn().Str("path", r.URL.Path).Int("status", status).Msg(err.Error())
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return errs.Validation("invalid JSON body")
	}
	return validate.Struct(dst)
}

// actingUser reads the positive user id from the sharer header.
func actingUser(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		return 0, errs.Validation("header %s is required", userIDHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid %s header: %s", userIDHeader, raw)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid id: %s", raw)
	}
	return id, nil
}

// paging reads from (default 0) and the optional size.
func paging(r *http.Request) (int, *int, error) {
	q := r.URL.Query()

	from := 0
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, errs.Validation("invalid from: %s", raw)
		}
		from = v
	}

	var size *int
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, errs.Validation("invalid size: %s", raw)
		}
		size = &v
	}
	return from, size, nil
}
