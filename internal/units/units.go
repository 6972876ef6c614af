// Package units holds the pure unit-conversion functions used when
// normalizing provider payloads and rendering display values. Rounding is
// applied only at the final conversion step, never on intermediates.
package units

import (
	"fmt"
	"math"
)

// TemperatureUnit selects the display scale for temperatures.
type TemperatureUnit string

const (
	Fahrenheit TemperatureUnit = "fahrenheit"
	Celsius    TemperatureUnit = "celsius"
)

// Temperature converts a Fahrenheit value to the target unit, rounded.
func Temperature(valueF float64, unit TemperatureUnit) int {
	if unit == Celsius {
		return int(math.Round((valueF - 32) * 5 / 9))
	}
	return int(math.Round(valueF))
}

// KelvinToFahrenheit converts Kelvin to rounded Fahrenheit.
func KelvinToFahrenheit(k float64) int {
	return int(math.Round((k-273.15)*9/5 + 32))
}

// KelvinToCelsius converts Kelvin to rounded Celsius.
func KelvinToCelsius(k float64) int {
	return int(math.Round(k - 273.15))
}

// SpeedUnit selects the display scale for wind speeds.
type SpeedUnit string

const (
	Mph SpeedUnit = "mph"
	Kmh SpeedUnit = "kmh"
)

// Speed converts a mph value to the target unit, rounded.
func Speed(valueMph float64, unit SpeedUnit) int {
	if unit == Kmh {
		return int(math.Round(valueMph * 1.60934))
	}
	return int(math.Round(valueMph))
}

// DistanceUnit selects the display scale for distances.
type DistanceUnit string

const (
	Miles      DistanceUnit = "miles"
	Kilometers DistanceUnit = "km"
)

// Distance converts a miles value to the target unit, rounded.
func Distance(valueMiles float64, unit DistanceUnit) int {
	if unit == Kilometers {
		return int(math.Round(valueMiles * 1.60934))
	}
	return int(math.Round(valueMiles))
}

// MetersToMiles converts meters to rounded miles.
func MetersToMiles(m float64) int {
	return int(math.Round(m * 0.000621371))
}

// HPaToInHg converts hectopascals to inches of mercury, formatted to two
// decimal places for display.
func HPaToInHg(hPa float64) string {
	return fmt.Sprintf("%.2f", hPa*0.02953)
}
