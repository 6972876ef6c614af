package models

import "time"

// CurrentConditions is the normalized view of the provider's current-weather
// payload. Temperatures are Fahrenheit, distances miles, speeds mph; pressure
// is a pre-formatted inHg display string.
type CurrentConditions struct {
	Location      string `json:"location"`
	Temperature   int    `json:"temperature"`
	FeelsLike     int    `json:"feelsLike"`
	Description   string `json:"description"`
	Humidity      int    `json:"humidity"`
	Pressure      string `json:"pressure"`
	Visibility    int    `json:"visibility"`
	WindSpeed     int    `json:"windSpeed"`
	WindDirection string `json:"windDirection"`
	UVIndex       int    `json:"uvIndex"`
	UVLevel       string `json:"uvLevel"`
	AQI           int    `json:"aqi"`
	AQILevel      string `json:"aqiLevel"`
	Icon          string `json:"icon"`
	Sunrise       string `json:"sunrise"`
	Sunset        string `json:"sunset"`
	IsDay         bool   `json:"isDay"`
	LastUpdated   string `json:"lastUpdated"`
}

// ForecastDay is one calendar day of the normalized forecast.
type ForecastDay struct {
	Date                string `json:"date"`
	DayName             string `json:"dayName"`
	Icon                string `json:"icon"`
	Description         string `json:"description"`
	TempHigh            int    `json:"tempHigh"`
	TempLow             int    `json:"tempLow"`
	PrecipitationChance int    `json:"precipitationChance"`
}

// ForecastLength is the fixed number of forecast days in a snapshot.
const ForecastLength = 10

// WeatherSnapshot is the canonical, provider-agnostic weather shape served to
// clients and stored in the cache. Forecast always holds ForecastLength days.
type WeatherSnapshot struct {
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastDay     `json:"forecast"`
}

// CacheEntry is one append-only cache record. Entries are never mutated; a
// coordinate that needs refreshing gets a new entry.
type CacheEntry struct {
	Lat      float64         `json:"lat"`
	Lon      float64         `json:"lon"`
	Snapshot WeatherSnapshot `json:"snapshot"`
	CachedAt time.Time       `json:"cachedAt"`
}

// Location is a geocoding result for a city lookup.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}
