package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"skycast/internal/models"
	"skycast/internal/observability"
)

// Client is the weather provider surface consumed by the orchestrator.
// Secondary calls (UVIndex, AirQuality, Forecast) may fail without failing
// the overall request; only CurrentWeather is load-bearing.
type Client interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (*CurrentResponse, error)
	UVIndex(ctx context.Context, lat, lon float64) (float64, error)
	AirQuality(ctx context.Context, lat, lon float64) (float64, error)
	Forecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error)
	Geocode(ctx context.Context, city string) (models.Location, error)
	Configured() bool
}

// OpenWeatherClient calls the OpenWeatherMap REST API. One attempt per call;
// an optional circuit breaker sheds load when the provider is down.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	geoURL  string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// Option configures an OpenWeatherClient.
type Option func(*OpenWeatherClient)

// WithBreaker wraps all provider calls in a circuit breaker that opens after
// consecutiveFailures failures and probes again after cooldown.
func WithBreaker(consecutiveFailures uint32, cooldown time.Duration) Option {
	return func(c *OpenWeatherClient) {
		c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= consecutiveFailures
			},
		})
	}
}

// WithHTTPClient overrides the underlying HTTP client. Used in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenWeatherClient) { c.client = hc }
}

// NewOpenWeatherClient creates a client. An empty apiKey is allowed: the
// client constructs fine and every call reports ErrNotConfigured, so a
// missing key surfaces per-request instead of killing the process.
func NewOpenWeatherClient(apiKey, baseURL, geoURL string, timeout time.Duration, opts ...Option) *OpenWeatherClient {
	c := &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		geoURL:  geoURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a provider API key is present.
func (c *OpenWeatherClient) Configured() bool {
	return c.apiKey != ""
}

// CurrentWeather fetches current conditions for the coordinates in imperial
// units. This is the primary fetch; its failure fails the request.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, lat, lon float64) (*CurrentResponse, error) {
	var out CurrentResponse
	if err := c.getJSON(ctx, "weather", c.coordParams(lat, lon, true), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UVIndex fetches the UV index for the coordinates.
func (c *OpenWeatherClient) UVIndex(ctx context.Context, lat, lon float64) (float64, error) {
	var out uvResponse
	if err := c.getJSON(ctx, "uvi", c.coordParams(lat, lon, false), &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// AirQuality fetches the provider's 1-6 air-quality index for the
// coordinates. Scaling to the US EPA range happens in the normalizer.
func (c *OpenWeatherClient) AirQuality(ctx context.Context, lat, lon float64) (float64, error) {
	var out airResponse
	if err := c.getJSON(ctx, "air_pollution", c.coordParams(lat, lon, false), &out); err != nil {
		return 0, err
	}
	if len(out.List) == 0 {
		return 0, nil
	}
	return out.List[0].Main.AQI, nil
}

// Forecast fetches the 3-hourly forecast for the coordinates in imperial units.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	var out ForecastResponse
	if err := c.getJSON(ctx, "forecast", c.coordParams(lat, lon, true), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Geocode resolves a city name to coordinates via the provider's geo API.
// Returns ErrCityNotFound when the geocoder has no match.
func (c *OpenWeatherClient) Geocode(ctx context.Context, city string) (models.Location, error) {
	if !c.Configured() {
		return models.Location{}, ErrNotConfigured
	}
	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	var results []geoResult
	if err := c.doJSON(ctx, c.geoURL+"/direct", params, "geocode", &results); err != nil {
		return models.Location{}, err
	}
	if len(results) == 0 {
		return models.Location{}, ErrCityNotFound
	}
	return models.Location{
		Lat:     results[0].Lat,
		Lon:     results[0].Lon,
		City:    results[0].Name,
		Country: results[0].Country,
	}, nil
}

func (c *OpenWeatherClient) coordParams(lat, lon float64, imperial bool) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	if imperial {
		params.Set("units", "imperial")
	}
	return params
}

func (c *OpenWeatherClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return c.doJSON(ctx, c.baseURL+"/"+endpoint, params, endpoint, out)
}

func (c *OpenWeatherClient) doJSON(ctx context.Context, rawURL string, params url.Values, endpoint string, out interface{}) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.do(req)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.ProviderCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: request timeout: %v", ErrNetwork, err)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: circuit open", ErrNetwork)
		}
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	observability.ProviderCallsTotal.WithLabelValues(endpoint, statusLabel(resp.StatusCode)).Inc()
	observability.ProviderCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// errServerStatus marks provider 5xx responses as failures for the breaker
// while still handing the response back to the caller for status mapping.
var errServerStatus = errors.New("upstream server status")

// do executes the request, through the circuit breaker when one is configured.
// Provider 5xx responses count against the breaker; the response itself is
// still returned so the caller can propagate the status code.
func (c *OpenWeatherClient) do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.client.Do(req)
	}
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			return r, errServerStatus
		}
		return r, nil
	})
	if err != nil && resp != nil && errors.Is(err, errServerStatus) {
		return resp, nil
	}
	return resp, err
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	default:
		return "server_error"
	}
}
