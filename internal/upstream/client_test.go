package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*OpenWeatherClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherClient("test-key", srv.URL, srv.URL, 2*time.Second, opts...), srv
}

// TestCurrentWeather_OK verifies request shape and payload decoding.
func TestCurrentWeather_OK(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("appid") != "test-key" {
			t.Errorf("appid = %q, want test-key", q.Get("appid"))
		}
		if q.Get("units") != "imperial" {
			t.Errorf("units = %q, want imperial", q.Get("units"))
		}
		if q.Get("lat") != "47.6062" || q.Get("lon") != "-122.3321" {
			t.Errorf("coords = %s,%s", q.Get("lat"), q.Get("lon"))
		}
		w.Write([]byte(`{"name":"Seattle","main":{"temp":53.6,"humidity":71},"sys":{"country":"US"}}`))
	}))

	got, err := client.CurrentWeather(context.Background(), 47.6062, -122.3321)
	if err != nil {
		t.Fatalf("CurrentWeather() error = %v", err)
	}
	if got.Name != "Seattle" || got.Sys.Country != "US" {
		t.Errorf("CurrentWeather() = %+v", got)
	}
	if got.Main.Temp != 53.6 || got.Main.Humidity != 71 {
		t.Errorf("Main = %+v", got.Main)
	}
}

// TestCurrentWeather_NotConfigured verifies empty-key clients fail before any
// network I/O.
func TestCurrentWeather_NotConfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	client := NewOpenWeatherClient("", srv.URL, srv.URL, time.Second)

	_, err := client.CurrentWeather(context.Background(), 1, 2)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("CurrentWeather() error = %v, want ErrNotConfigured", err)
	}
	if called {
		t.Error("provider was called despite missing key")
	}
}

// TestCurrentWeather_StatusError verifies non-2xx responses surface as
// StatusError carrying the provider's status and message.
func TestCurrentWeather_StatusError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))

	_, err := client.CurrentWeather(context.Background(), 1, 2)
	se, ok := AsStatusError(err)
	if !ok {
		t.Fatalf("CurrentWeather() error = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", se.StatusCode)
	}
	if se.Message != "Invalid API key" {
		t.Errorf("Message = %q, want provider message", se.Message)
	}
}

// TestCurrentWeather_NetworkError verifies transport failures wrap ErrNetwork.
func TestCurrentWeather_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	client := NewOpenWeatherClient("test-key", srv.URL, srv.URL, time.Second)

	_, err := client.CurrentWeather(context.Background(), 1, 2)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("CurrentWeather() error = %v, want ErrNetwork", err)
	}
}

// TestGeocode verifies result mapping and the empty-result not-found case.
func TestGeocode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Seattle" {
			w.Write([]byte(`[{"name":"Seattle","lat":47.6062,"lon":-122.3321,"country":"US"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))

	loc, err := client.Geocode(context.Background(), "Seattle")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if loc.City != "Seattle" || loc.Country != "US" || loc.Lat != 47.6062 {
		t.Errorf("Geocode() = %+v", loc)
	}

	_, err = client.Geocode(context.Background(), "Atlantis")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("Geocode() error = %v, want ErrCityNotFound", err)
	}
}

// TestUVIndexAndAirQuality verifies the scalar extraction of the secondary
// endpoints, including the empty air-quality list.
func TestUVIndexAndAirQuality(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/uvi":
			w.Write([]byte(`{"value":6.4}`))
		case r.URL.Path == "/air_pollution":
			w.Write([]byte(`{"list":[{"main":{"aqi":3}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))

	uv, err := client.UVIndex(context.Background(), 1, 2)
	if err != nil || uv != 6.4 {
		t.Errorf("UVIndex() = %v, %v, want 6.4", uv, err)
	}
	aqi, err := client.AirQuality(context.Background(), 1, 2)
	if err != nil || aqi != 3 {
		t.Errorf("AirQuality() = %v, %v, want 3", aqi, err)
	}
}

// TestAirQuality_EmptyList verifies an empty provider list degrades to zero.
func TestAirQuality_EmptyList(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[]}`))
	}))

	aqi, err := client.AirQuality(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("AirQuality() error = %v", err)
	}
	if aqi != 0 {
		t.Errorf("AirQuality() = %v, want 0", aqi)
	}
}

// TestBreakerOpensAfterConsecutiveFailures verifies 5xx responses trip the
// breaker and subsequent calls fail fast with ErrNetwork.
func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}), WithBreaker(2, time.Minute))

	// Two 5xx responses still reach the caller as StatusError.
	for i := 0; i < 2; i++ {
		_, err := client.CurrentWeather(context.Background(), 1, 2)
		if _, ok := AsStatusError(err); !ok {
			t.Fatalf("call %d error = %v, want StatusError", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("provider calls = %d, want 2", calls)
	}

	// Breaker is open now: the provider is not contacted again.
	_, err := client.CurrentWeather(context.Background(), 1, 2)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error after trip = %v, want ErrNetwork", err)
	}
	if calls != 2 {
		t.Errorf("provider calls after trip = %d, want still 2", calls)
	}
}

// TestCorrelationIDForwarded verifies the request-scoped correlation ID is
// propagated to the provider.
func TestCorrelationIDForwarded(t *testing.T) {
	var gotHeader string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Correlation-ID")
		w.Write([]byte(`{}`))
	}))

	ctx := context.WithValue(context.Background(), "correlation_id", "corr-123")
	if _, err := client.CurrentWeather(ctx, 1, 2); err != nil {
		t.Fatalf("CurrentWeather() error = %v", err)
	}
	if gotHeader != "corr-123" {
		t.Errorf("X-Correlation-ID = %q, want corr-123", gotHeader)
	}
}
