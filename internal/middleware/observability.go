package middleware

import (
	"fmt"
	"net/http"
	"time"

	"channelguard/internal/httputil"
	"channelguard/internal/metrics"
	"channelguard/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Observability adds tracing, metrics, and request logging to every HTTP
// request the webhook server handles.
func Observability(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.StartSpan(r.Context(), "http_request",
				attribute.String("http.method", r.Method),
				attribute.String("http.route", r.URL.Path),
				attribute.String("client.address", httputil.GetClientIP(r)),
			)
			defer span.End()

			start := time.Now()
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			duration := time.Since(start)

			tracing.AddSpanAttributes(ctx, attribute.Int("http.status_code", wrapper.statusCode))
			if wrapper.statusCode >= 400 {
				tracing.SetSpanStatus(ctx, codes.Error, fmt.Sprintf("HTTP %d", wrapper.statusCode))
			}

			metrics.IncrementCounter("http_requests", map[string]string{
				"path":   r.URL.Path,
				"status": fmt.Sprintf("%d", wrapper.statusCode),
			}, "HTTP requests handled")

			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapper.statusCode,
				"duration_ms": duration.Milliseconds(),
				"client_ip":   httputil.GetClientIP(r),
			}).Debug("HTTP request handled")
		})
	}
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
