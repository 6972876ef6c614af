package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"skycast/internal/lifecycle"
	"skycast/internal/service"
	"skycast/internal/store"
	"skycast/internal/upstream"
	"skycast/internal/validation"
)

// User-facing error messages. Internal details stay in the server logs.
const (
	msgWeatherFailed  = "Failed to fetch weather data. Please check your internet connection and try again."
	msgLocationFailed = "Failed to fetch location data"
	msgKeyMissing     = "OpenWeatherMap API key not configured. Please set OPENWEATHER_API_KEY environment variable."
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weather   *service.WeatherService
	users     store.Users
	locations store.Locations
	logger    *zap.Logger
	validate  *validator.Validate
	// cachePing, when set, is called by the health handler to check cache
	// reachability. Set when the backend is memcached or postgres.
	cachePing func() error
}

// NewHandler returns a new Handler.
func NewHandler(
	weather *service.WeatherService,
	users store.Users,
	locations store.Locations,
	logger *zap.Logger,
	cachePing func() error,
) *Handler {
	return &Handler{
		weather:   weather,
		users:     users,
		locations: locations,
		logger:    logger,
		validate:  validator.New(),
		cachePing: cachePing,
	}
}

// GetWeather handles GET /api/weather?lat={float}&lon={float}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := validation.ParseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.weather.GetWeather(r.Context(), lat, lon)
	if err != nil {
		h.writeWeatherError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// writeWeatherError maps orchestrator failures onto the response statuses the
// UI expects: 500 for missing key and network failures, the provider's own
// status for upstream errors.
func (h *Handler) writeWeatherError(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, "weather request failed", err)
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
		writeMessage(w, http.StatusInternalServerError, msgKeyMissing)
	default:
		if se, ok := upstream.AsStatusError(err); ok {
			msg := "Weather API error: Failed to fetch weather data"
			if se.Message != "" {
				msg = "Weather API error: " + se.Message
			}
			writeMessage(w, se.StatusCode, msg)
			return
		}
		writeMessage(w, http.StatusInternalServerError, msgWeatherFailed)
	}
}

// GetLocation handles GET /api/location?city={string}.
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	city, err := validation.ValidateCity(r.URL.Query().Get("city"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	loc, err := h.weather.LocateCity(r.Context(), city)
	if err != nil {
		h.logError(r, "location request failed", err)
		switch {
		case errors.Is(err, upstream.ErrNotConfigured):
			writeMessage(w, http.StatusInternalServerError, "OpenWeatherMap API key not configured")
		case errors.Is(err, upstream.ErrCityNotFound):
			writeMessage(w, http.StatusNotFound, "City not found")
		default:
			if se, ok := upstream.AsStatusError(err); ok {
				writeMessage(w, se.StatusCode, msgLocationFailed)
				return
			}
			writeMessage(w, http.StatusInternalServerError, msgLocationFailed)
		}
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// ClearCache handles DELETE /api/cache/clear: purge entries past retention.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.weather.PurgeCache(r.Context())
	if err != nil {
		h.logError(r, "cache purge failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cache cleared",
		"removed": removed,
	})
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "shutting-down",
			"service":   "skycast",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	checks := make(map[string]string)
	status := "healthy"
	statusCode := http.StatusOK

	if h.weather.Configured() {
		checks["weatherApi"] = "configured"
	} else {
		checks["weatherApi"] = "unconfigured"
		status = "degraded"
	}
	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
			status = "degraded"
		}
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "skycast",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage writes the API's error body shape: { "message": string }.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// logError logs a failed request with the request-scoped logger, falling back
// to the handler's base logger when middleware did not attach one.
func (h *Handler) logError(r *http.Request, msg string, err error) {
	logger := h.logger
	if reqLogger, ok := r.Context().Value("logger").(*zap.Logger); ok && reqLogger != nil {
		logger = reqLogger
	}
	if logger != nil {
		logger.Error(msg, zap.Error(err))
	}
}
