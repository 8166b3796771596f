package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/drowsy/pkg/logger"
	"github.com/okian/drowsy/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics. A panic
// in next is logged and answered with 500 instead of killing the connection.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if v := recover(); v != nil {
				logger.Get().Named("api").Error(r.Context(), "handler panic",
					logger.String("endpoint", endpoint),
					logger.Any("panic", v),
				)
				if !rec.wroteHeader {
					writeError(rec, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: panic", ErrInternal))
				} else {
					rec.statusCode = http.StatusInternalServerError
				}
			}

			durationMs := float64(time.Since(start).Milliseconds())
			code := strconv.Itoa(rec.statusCode)
			metrics.RecordHTTPRequest(endpoint, r.Method, code)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)
			if rec.statusCode >= http.StatusBadRequest {
				metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType(rec.statusCode))
			}
		}()

		next.ServeHTTP(rec, r)
	}
}

// errorType returns a standardized error type based on HTTP status code.
func errorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
