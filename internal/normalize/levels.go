package normalize

import "math"

// UV index severity bands.
const (
	UVLow      = "Low"
	UVModerate = "Moderate"
	UVHigh     = "High"
	UVVeryHigh = "Very High"
	UVExtreme  = "Extreme"
)

// US EPA air-quality severity bands.
const (
	AQIGood               = "Good"
	AQIModerate           = "Moderate"
	AQIUnhealthySensitive = "Unhealthy for Sensitive Groups"
	AQIUnhealthy          = "Unhealthy"
	AQIVeryUnhealthy      = "Very Unhealthy"
	AQIHazardous          = "Hazardous"
)

// UVLevel maps a UV index onto one of five severity bands.
func UVLevel(uvIndex float64) string {
	switch {
	case uvIndex <= 2:
		return UVLow
	case uvIndex <= 5:
		return UVModerate
	case uvIndex <= 7:
		return UVHigh
	case uvIndex <= 10:
		return UVVeryHigh
	default:
		return UVExtreme
	}
}

// AQILevel maps a US EPA air-quality index onto one of six severity bands.
// Providers reporting a 1-6 scale are scaled by 50 before this is called.
func AQILevel(aqi float64) string {
	switch {
	case aqi <= 50:
		return AQIGood
	case aqi <= 100:
		return AQIModerate
	case aqi <= 150:
		return AQIUnhealthySensitive
	case aqi <= 200:
		return AQIUnhealthy
	case aqi <= 300:
		return AQIVeryUnhealthy
	default:
		return AQIHazardous
	}
}

// compassPoints is the 16-point compass rose, clockwise from north.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection maps wind bearing in degrees to its 16-point compass label.
// Each point covers a 22.5 degree arc centered on its bearing.
func WindDirection(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}
