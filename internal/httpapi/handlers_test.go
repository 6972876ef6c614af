package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skycast/internal/cache"
	"skycast/internal/lifecycle"
	"skycast/internal/models"
	"skycast/internal/normalize"
	"skycast/internal/service"
	"skycast/internal/store"
	"skycast/internal/upstream"
)

// stubClient implements upstream.Client for handler tests.
type stubClient struct {
	configured bool
	currentErr error
	geocodeErr error
}

func (s *stubClient) CurrentWeather(ctx context.Context, lat, lon float64) (*upstream.CurrentResponse, error) {
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	var cur upstream.CurrentResponse
	cur.Name = "Seattle"
	cur.Sys.Country = "US"
	cur.Main.Temp = 54
	return &cur, nil
}

func (s *stubClient) UVIndex(ctx context.Context, lat, lon float64) (float64, error)    { return 3, nil }
func (s *stubClient) AirQuality(ctx context.Context, lat, lon float64) (float64, error) { return 1, nil }
func (s *stubClient) Forecast(ctx context.Context, lat, lon float64) (*upstream.ForecastResponse, error) {
	return &upstream.ForecastResponse{}, nil
}

func (s *stubClient) Geocode(ctx context.Context, city string) (models.Location, error) {
	if s.geocodeErr != nil {
		return models.Location{}, s.geocodeErr
	}
	return models.Location{Lat: 47.6, Lon: -122.3, City: city, Country: "US"}, nil
}

func (s *stubClient) Configured() bool { return s.configured }

func testServer(t *testing.T, client upstream.Client) *httptest.Server {
	t.Helper()
	svc := service.NewWeatherService(client, cache.NewMemoryStore(10*time.Minute), normalize.New(), time.Hour)
	h := NewHandler(svc, store.NewMemoryUsers(), store.NewMemoryLocations(), zap.NewNop(), nil)
	router := NewRouter(h, zap.NewNop(), RouterConfig{
		RequestTimeout: 5 * time.Second,
		RateLimit:      1000,
		RateBurst:      1000,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["message"]
}

func TestGetWeather_OK(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/api/weather?lat=47.6062&lon=-122.3321")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap models.WeatherSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "Seattle, US", snap.Current.Location)
	assert.Len(t, snap.Forecast, models.ForecastLength)
}

func TestGetWeather_MissingCoordinates(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	for _, query := range []string{"", "?lat=47.6", "?lon=-122.3"} {
		resp, err := http.Get(srv.URL + "/api/weather" + query)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Latitude and longitude are required", decodeMessage(t, resp))
		resp.Body.Close()
	}
}

func TestGetWeather_InvalidCoordinates(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	for _, query := range []string{"?lat=abc&lon=-122.3", "?lat=91&lon=0", "?lat=0&lon=181"} {
		resp, err := http.Get(srv.URL + "/api/weather" + query)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %s", query)
		resp.Body.Close()
	}
}

func TestGetWeather_NotConfigured(t *testing.T) {
	srv := testServer(t, &stubClient{configured: false})

	resp, err := http.Get(srv.URL + "/api/weather?lat=47.6&lon=-122.3")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeMessage(t, resp), "API key not configured")
}

func TestGetWeather_UpstreamStatusPropagated(t *testing.T) {
	srv := testServer(t, &stubClient{
		configured: true,
		currentErr: &upstream.StatusError{StatusCode: http.StatusTooManyRequests, Message: "rate limited"},
	})

	resp, err := http.Get(srv.URL + "/api/weather?lat=47.6&lon=-122.3")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Weather API error: rate limited", decodeMessage(t, resp))
}

func TestGetWeather_NetworkError(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true, currentErr: upstream.ErrNetwork})

	resp, err := http.Get(srv.URL + "/api/weather?lat=47.6&lon=-122.3")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeMessage(t, resp), "Failed to fetch weather data")
}

func TestGetLocation_OK(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/api/location?city=Seattle")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loc models.Location
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loc))
	assert.Equal(t, "Seattle", loc.City)
	assert.Equal(t, 47.6, loc.Lat)
}

func TestGetLocation_MissingCity(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/api/location")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "City name is required", decodeMessage(t, resp))
}

func TestGetLocation_CityNotFound(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true, geocodeErr: upstream.ErrCityNotFound})

	resp, err := http.Get(srv.URL + "/api/location?city=Atlantis")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "City not found", decodeMessage(t, resp))
}

func TestClearCache(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/cache/clear", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Cache cleared", body["message"])
}

func TestGetHealth(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "skycast", body["service"])
}

func TestGetHealth_ShuttingDown(t *testing.T) {
	lifecycle.SetShuttingDown(true)
	t.Cleanup(func() { lifecycle.SetShuttingDown(false) })

	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "shutting-down", body["status"])
}

func TestCorrelationIDHeader(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Correlation-ID", "test-corr-id")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "test-corr-id", resp.Header.Get("X-Correlation-ID"))
}

func TestUserLocationCRUD(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	// Create a user.
	resp, err := http.Post(srv.URL+"/api/users", "application/json",
		bytes.NewBufferString(`{"username":"alice"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	resp.Body.Close()
	require.NotEmpty(t, user.ID)

	// Save two locations, the second replacing the first as default.
	for _, payload := range []string{
		`{"name":"Home","lat":47.6,"lon":-122.3,"isDefault":true}`,
		`{"name":"Work","lat":40.7,"lon":-74.0,"isDefault":true}`,
	} {
		resp, err = http.Post(srv.URL+"/api/users/"+user.ID+"/locations", "application/json",
			bytes.NewBufferString(payload))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err = http.Get(srv.URL + "/api/users/" + user.ID + "/locations")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var locs []models.SavedLocation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&locs))
	resp.Body.Close()

	require.Len(t, locs, 2)
	defaults := 0
	var workID string
	for _, loc := range locs {
		if loc.IsDefault {
			defaults++
			assert.Equal(t, "Work", loc.Name)
		}
		if loc.Name == "Work" {
			workID = loc.ID
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default location per user")

	// Delete one and confirm the list shrinks.
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/users/"+user.ID+"/locations/"+workID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/users/" + user.ID + "/locations")
	require.NoError(t, err)
	locs = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&locs))
	resp.Body.Close()
	assert.Len(t, locs, 1)
}

func TestGetUser_NotFound(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Get(srv.URL + "/api/users/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", decodeMessage(t, resp))
}

func TestCreateUser_Invalid(t *testing.T) {
	srv := testServer(t, &stubClient{configured: true})

	resp, err := http.Post(srv.URL+"/api/users", "application/json",
		bytes.NewBufferString(`{"username":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	svc := service.NewWeatherService(&stubClient{configured: true}, cache.NewMemoryStore(10*time.Minute), normalize.New(), time.Hour)
	h := NewHandler(svc, store.NewMemoryUsers(), store.NewMemoryLocations(), zap.NewNop(), nil)
	router := NewRouter(h, zap.NewNop(), RouterConfig{
		RequestTimeout: 5 * time.Second,
		RateLimit:      1,
		RateBurst:      1,
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	// First request consumes the single token; the second is denied.
	resp, err := http.Get(srv.URL + "/api/weather?lat=47.6&lon=-122.3")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/weather?lat=47.6&lon=-122.3")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Health stays reachable when the API is throttled.
	resp2, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
