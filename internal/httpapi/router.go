package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"skycast/internal/observability"
)

// RouterConfig carries the knobs the router needs from the config layer.
type RouterConfig struct {
	RequestTimeout time.Duration
	// RateLimit and RateBurst bound request throughput across all /api
	// routes. RateLimit <= 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// NewRouter wires routes and middleware. Correlation IDs and metrics apply to
// everything; rate limiting and the request timeout apply to /api only, so
// health and metrics scrapes never get throttled.
func NewRouter(h *Handler, logger *zap.Logger, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(CorrelationIDMiddleware(logger))
	r.Use(MetricsMiddleware)

	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(RateLimitMiddleware(limiter))
	api.Use(TimeoutMiddleware(cfg.RequestTimeout))

	api.HandleFunc("/weather", h.GetWeather).Methods(http.MethodGet)
	api.HandleFunc("/location", h.GetLocation).Methods(http.MethodGet)
	api.HandleFunc("/cache/clear", h.ClearCache).Methods(http.MethodDelete)

	api.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/locations", h.AddLocation).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/locations", h.ListLocations).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/locations/{locationId}", h.UpdateLocation).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/locations/{locationId}", h.DeleteLocation).Methods(http.MethodDelete)

	return r
}
