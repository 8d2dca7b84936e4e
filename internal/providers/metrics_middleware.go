package providers

import (
	"net/http"
	"time"
)

// statusWriter records the status code a handler writes. Handlers that
// never call WriteHeader implicitly answer 200, so that is the default.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware counts every request per endpoint and status and
// times it end to end.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		endpoint := r.URL.Path
		metrics.IncRequestsTotal(endpoint, recorder.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
