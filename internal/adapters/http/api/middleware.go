package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/teampicker/pkg/metrics"
)

// IdempotencyHeader carries a client-chosen key on mutating requests.
const IdempotencyHeader = "Idempotency-Key"

const idempotencySource = "http"

// MetricsMiddleware records Prometheus metrics per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)
		if wrapped.statusCode >= http.StatusBadRequest {
			metrics.RecordHTTPError(endpoint, r.Method, getErrorType(wrapped.statusCode))
		}
	})
}

// IdempotencyMiddleware answers a repeated Idempotency-Key with a duplicate
// acknowledgement instead of running the command twice. Keys whose request
// failed on the server side are released so the client can retry.
func IdempotencyMiddleware(deps Idempotency) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			id := r.Method + " " + r.URL.Path + " " + key
			if deps.SeenAndRecord(r.Context(), idempotencySource, id) {
				writeJSON(w, http.StatusOK, statusResponse{Status: "duplicate", Duplicate: true})
				return
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			if wrapped.statusCode == http.StatusTooManyRequests || wrapped.statusCode >= http.StatusInternalServerError {
				deps.Unrecord(r.Context(), idempotencySource, id)
			}
		})
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode == http.StatusConflict:
		return "conflict"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
