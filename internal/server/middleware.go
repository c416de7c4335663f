package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"roster/internal/logging"
	"roster/internal/metrics"
	"roster/internal/observability"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// instrument assigns a request id, recovers panics, records metrics and logs
// each request once it completes.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(logging.WithRequestID(r.Context(), requestID))

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				err := fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, p)
				observability.CaptureErr(err)
				logging.WithContext(r.Context(), s.logger).Error("request panicked", logging.Error(err))
				if rec.status == 0 {
					s.writeError(rec, r, http.StatusInternalServerError, "internal error", nil)
				}
			}
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)
			metrics.ObserveRequest(route, strconv.Itoa(status), elapsed)
			logging.WithContext(r.Context(), s.logger).Debug("request served",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("route", route),
				logging.Int64("status", int64(status)),
				logging.Int64("duration_ms", elapsed.Milliseconds()),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}
