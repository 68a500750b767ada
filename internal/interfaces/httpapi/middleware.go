package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const internalJobTokenHeader = "X-Internal-Job-Token"

// RequireInternalJobToken guards ingest and job routes. Requests without
// the shared token are rejected before any handler work happens.
func RequireInternalJobToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			writeJSON(r.Context(), w, http.StatusServiceUnavailable, googleResponseEnvelope{
				APIVersion: googleAPIVersion,
				Error: &googleErrorBody{
					Code:    http.StatusServiceUnavailable,
					Message: "internal job token is not configured",
					Status:  "UNAVAILABLE",
				},
			})
			return
		}

		provided := r.Header.Get(internalJobTokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeJSON(r.Context(), w, http.StatusUnauthorized, googleResponseEnvelope{
				APIVersion: googleAPIVersion,
				Error: &googleErrorBody{
					Code:    http.StatusUnauthorized,
					Message: "invalid internal job token",
					Status:  "UNAUTHENTICATED",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestTracing wraps the mux in otelhttp so each request runs inside a
// server span. Health probes are filtered out to keep traces useful.
func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "pitchrank-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			if pattern := r.Pattern; pattern != "" {
				return pattern
			}
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz"
		}),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogging emits one structured line per request with method, path,
// status, and duration. Health probes are skipped.
func RequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

// CORS answers preflight requests and stamps the permissive headers this
// internal API needs for dashboard tooling.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+internalJobTokenHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
