package httpapi

import (
	"net/http"

	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

// NewRouter assembles the mux and the middleware chain. Tracing wraps
// everything so the request logger can pick up trace ids from context.
func NewRouter(h *Handler, logger *logging.Logger, internalJobToken string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, h)
	registerIngestRoutes(mux, h, internalJobToken)
	registerJobRoutes(mux, h, internalJobToken)

	var handler http.Handler = mux
	handler = recoverPanic(logger, handler)
	handler = CORS(handler)
	handler = RequestLogging(logger, handler)
	handler = RequestTracing(handler)
	return handler
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorContext(r.Context(), "panic in http handler",
					"panic", recovered,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
