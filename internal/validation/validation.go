// Package validation checks request inputs before any cache or upstream work
// happens. Messages here are user-facing.
package validation

import (
	"errors"
	"strconv"
	"strings"
)

// ErrCoordinatesMissing is returned when lat or lon is absent.
var ErrCoordinatesMissing = errors.New("Latitude and longitude are required")

// ErrCoordinatesInvalid is returned when lat or lon is non-numeric or out of range.
var ErrCoordinatesInvalid = errors.New("Latitude and longitude must be valid numbers")

// ErrCityMissing is returned when the city query parameter is absent.
var ErrCityMissing = errors.New("City name is required")

// ParseCoordinates parses and bounds-checks lat/lon query values. Latitude is
// bounded to [-90, 90], longitude to [-180, 180].
func ParseCoordinates(latStr, lonStr string) (lat, lon float64, err error) {
	latStr = strings.TrimSpace(latStr)
	lonStr = strings.TrimSpace(lonStr)
	if latStr == "" || lonStr == "" {
		return 0, 0, ErrCoordinatesMissing
	}
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, ErrCoordinatesInvalid
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, ErrCoordinatesInvalid
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, ErrCoordinatesInvalid
	}
	return lat, lon, nil
}

// ValidateCity trims the city query value and requires it to be non-empty.
func ValidateCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", ErrCityMissing
	}
	return city, nil
}
