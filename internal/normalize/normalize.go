// Package normalize maps raw provider payloads into the canonical
// WeatherSnapshot, deriving every classification field (UV and AQI bands,
// compass labels, icon vocabulary, day labels) and reducing sub-daily
// forecasts to one entry per calendar day.
package normalize

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"skycast/internal/models"
	"skycast/internal/units"
	"skycast/internal/upstream"
)

// ErrNoCurrentConditions is returned when the primary current-conditions
// payload is missing. Secondary data (UV, AQI, forecast) degrades to defaults
// instead.
var ErrNoCurrentConditions = errors.New("current conditions payload is required")

// defaultVisibilityMeters is assumed when the provider omits visibility.
const defaultVisibilityMeters = 10000

// aqiScaleFactor converts the provider's 1-6 air-quality index to the US EPA range.
const aqiScaleFactor = 50

// Bundle carries one request's worth of raw provider payloads. Current is
// mandatory; zero UVIndex/AQIRaw and a nil Forecast mean the secondary fetch
// failed and defaults apply.
type Bundle struct {
	Current  *upstream.CurrentResponse
	UVIndex  float64
	AQIRaw   float64 // provider 1-6 scale, scaled to US EPA here
	Forecast *upstream.ForecastResponse
}

// Normalizer converts raw provider bundles into canonical snapshots. The
// clock and jitter source are injectable so derived day labels and forecast
// padding are deterministic under test.
type Normalizer struct {
	now    func() time.Time
	jitter *rand.Rand
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used for day labels and lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithJitter enables ±3 unit randomization of padded forecast temperatures
// from a seedable source. Without it, padding repeats the last known day
// verbatim so results stay reproducible.
func WithJitter(src rand.Source) Option {
	return func(n *Normalizer) { n.jitter = rand.New(src) }
}

// New creates a Normalizer with the real clock and deterministic padding.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Snapshot builds the canonical WeatherSnapshot from a raw bundle. Only a
// missing Current payload is an error; everything else degrades to defaults.
func (n *Normalizer) Snapshot(b Bundle) (models.WeatherSnapshot, error) {
	if b.Current == nil {
		return models.WeatherSnapshot{}, ErrNoCurrentConditions
	}

	current := n.currentConditions(b)
	forecast := n.forecastDays(b.Forecast, current)

	return models.WeatherSnapshot{Current: current, Forecast: forecast}, nil
}

func (n *Normalizer) currentConditions(b Bundle) models.CurrentConditions {
	raw := b.Current

	description := "Clear"
	iconCode := "01d"
	if len(raw.Weather) > 0 {
		if raw.Weather[0].Main != "" {
			description = raw.Weather[0].Main
		}
		if raw.Weather[0].Icon != "" {
			iconCode = raw.Weather[0].Icon
		}
	}

	location := raw.Name
	if raw.Sys.Country != "" {
		location += ", " + raw.Sys.Country
	}

	visibility := raw.Visibility
	if visibility == 0 {
		visibility = defaultVisibilityMeters
	}

	aqi := b.AQIRaw * aqiScaleFactor

	tz := time.FixedZone("local", raw.Timezone)

	return models.CurrentConditions{
		Location:      location,
		Temperature:   int(math.Round(raw.Main.Temp)),
		FeelsLike:     int(math.Round(raw.Main.FeelsLike)),
		Description:   description,
		Humidity:      raw.Main.Humidity,
		Pressure:      units.HPaToInHg(raw.Main.Pressure),
		Visibility:    units.MetersToMiles(visibility),
		WindSpeed:     int(math.Round(raw.Wind.Speed)),
		WindDirection: WindDirection(raw.Wind.Deg),
		UVIndex:       int(math.Round(b.UVIndex)),
		UVLevel:       UVLevel(b.UVIndex),
		AQI:           int(math.Round(aqi)),
		AQILevel:      AQILevel(aqi),
		Icon:          Icon(iconCode),
		Sunrise:       clockString(raw.Sys.Sunrise, tz),
		Sunset:        clockString(raw.Sys.Sunset, tz),
		IsDay:         !isNightIcon(iconCode),
		LastUpdated:   n.now().Format("1/2/2006, 3:04:05 PM"),
	}
}

// clockString formats a unix timestamp as a local wall-clock time, empty when
// the provider omitted the field.
func clockString(unix int64, tz *time.Location) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).In(tz).Format("3:04 PM")
}

func isNightIcon(code string) bool {
	return len(code) > 0 && code[len(code)-1] == 'n'
}

// DayName labels a forecast date relative to now: "Today", "Tomorrow", or the
// abbreviated weekday name. dateStr is a calendar date in 2006-01-02 form.
func DayName(dateStr string, now time.Time) string {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return dateStr
	}
	switch dateStr {
	case now.Format("2006-01-02"):
		return "Today"
	case now.AddDate(0, 0, 1).Format("2006-01-02"):
		return "Tomorrow"
	default:
		return date.Format("Mon")
	}
}
