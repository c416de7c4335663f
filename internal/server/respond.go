package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"roster/internal/logging"
	"roster/internal/observability"
	"roster/internal/records"
	"roster/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, fields map[string]string) {
	resp := errorResponse{Error: message, Fields: fields}
	if r != nil {
		resp.RequestID, _ = logging.RequestIDFromContext(r.Context())
	}
	s.writeJSON(w, status, resp)
}

// writeServiceError maps classified errors onto status codes: validation 422,
// conflict 409, not found 404. Anything else is a 500 and is reported.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		s.writeError(w, r, http.StatusUnprocessableEntity, verr.Message, verr.Fields)
		return
	}
	var cerr *records.ConstraintError
	if errors.As(err, &cerr) {
		status := http.StatusUnprocessableEntity
		if cerr.ErrorKind() == "conflict" {
			status = http.StatusConflict
		}
		s.writeError(w, r, status, cerr.Error(), map[string]string{cerr.Field: cerr.Error()})
		return
	}
	switch records.Kind(err) {
	case "not_found":
		s.writeError(w, r, http.StatusNotFound, "not found", nil)
		return
	case "validation":
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	case "conflict":
		s.writeError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}

	observability.CaptureErr(err)
	logging.WithContext(r.Context(), s.logger).Error("request failed",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
	s.writeError(w, r, http.StatusInternalServerError, "internal error", nil)
}

// decodeBody reads a JSON request body into dst.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := fmt.Sprintf("invalid JSON body: %v", err)
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		s.writeError(w, r, http.StatusBadRequest, msg, nil)
		return false
	}
	return true
}

// pathID parses the {id} path segment.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}
