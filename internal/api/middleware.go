package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/zirakhr/zirak/internal/assessment"
)

// AuthMiddleware maps API keys to principals.
type AuthMiddleware struct {
	keys map[string]string
}

// NewAuthMiddleware creates auth middleware from key -> user id pairs.
func NewAuthMiddleware(keys map[string]string) *AuthMiddleware {
	return &AuthMiddleware{keys: keys}
}

// Authenticate resolves "Authorization: Bearer <key>" or X-API-Key.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "provide Authorization header with Bearer token or X-API-Key header")
			return
		}

		user, ok := m.lookup(key)
		if !ok {
			log.Ctx(r.Context()).Warn().
				Str("key_prefix", maskKey(key)).
				Str("remote_addr", r.RemoteAddr).
				Msg("invalid api key attempt")
			respondError(w, http.StatusUnauthorized, "unauthorized", "the provided api key is not valid")
			return
		}

		ctx := ContextWithPrincipal(r.Context(), assessment.Principal{UserID: user})
		logger := log.Ctx(ctx).With().Str("user_id", user).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

func (m *AuthMiddleware) lookup(key string) (string, bool) {
	for k, user := range m.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return user, true
		}
	}
	return "", false
}

func extractAPIKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.Header.Get("X-API-Key")
}

// maskKey returns the first 4 chars of key for safe logging.
func maskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..."
}

// requestLogger puts a request-scoped zerolog logger in the context and
// logs each request when it finishes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		defer func() {
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		}()

		next.ServeHTTP(ww, r)
	})
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	f := promauto.With(reg)
	return &httpMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zirak_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zirak_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *httpMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
