package normalize

import "testing"

// TestUVLevel verifies the UV index band boundaries, including the exact
// values at each threshold.
func TestUVLevel(t *testing.T) {
	tests := []struct {
		uv   float64
		want string
	}{
		{0, UVLow},
		{2, UVLow},
		{2.1, UVModerate},
		{5, UVModerate},
		{6, UVHigh},
		{7, UVHigh},
		{8, UVVeryHigh},
		{10, UVVeryHigh},
		{11, UVExtreme},
		{14.5, UVExtreme},
	}
	for _, tt := range tests {
		if got := UVLevel(tt.uv); got != tt.want {
			t.Errorf("UVLevel(%v) = %q, want %q", tt.uv, got, tt.want)
		}
	}
}

// TestAQILevel verifies the US EPA air-quality band boundaries.
func TestAQILevel(t *testing.T) {
	tests := []struct {
		aqi  float64
		want string
	}{
		{0, AQIGood},
		{50, AQIGood},
		{51, AQIModerate},
		{100, AQIModerate},
		{150, AQIUnhealthySensitive},
		{200, AQIUnhealthy},
		{300, AQIVeryUnhealthy},
		{301, AQIHazardous},
		{500, AQIHazardous},
	}
	for _, tt := range tests {
		if got := AQILevel(tt.aqi); got != tt.want {
			t.Errorf("AQILevel(%v) = %q, want %q", tt.aqi, got, tt.want)
		}
	}
}

// TestWindDirection verifies degree-to-compass mapping, including wraparound
// at north and the arc boundaries around a point.
func TestWindDirection(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{11, "N"},
		{12, "NNE"},
		{22.5, "NNE"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{337.5, "NNW"},
		{348, "NNW"},
		{350, "N"},
		{360, "N"},
		{-45, "NW"},
	}
	for _, tt := range tests {
		if got := WindDirection(tt.deg); got != tt.want {
			t.Errorf("WindDirection(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}
