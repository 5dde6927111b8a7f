package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/metrics"
)

// RouterConfig holds cross-cutting HTTP settings.
type RouterConfig struct {
	CORSAllOrigins    bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter wires middleware and routes. /health and /metrics bypass rate limiting.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(logger))
	r.Use(metrics.Middleware())
	// CORS sits on the root mux so preflight OPTIONS is answered before routing.
	if cfg.CORSAllOrigins {
		r.Use(AllOriginsCORS())
	}

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(RateLimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))

		api.Get("/api/streams", s.ListStreams)
		// Path of the original PHP endpoint, so existing widgets keep working.
		api.Get("/api/streams.php", s.ListStreams)
	})

	return r
}
