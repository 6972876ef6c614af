package normalize

import "testing"

// TestIcon verifies provider icon codes map onto the internal vocabulary with
// day/night variants where they exist.
func TestIcon(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"01d", IconClearDay},
		{"01n", IconClearNight},
		{"02d", IconPartlyCloudyDay},
		{"02n", IconPartlyCloudyNight},
		{"03d", IconCloudy},
		{"03n", IconCloudy},
		{"04d", IconCloudy},
		{"09d", IconRain},
		{"10d", IconRain},
		{"10n", IconRain},
		{"11d", IconThunderstorm},
		{"13n", IconSnow},
		{"50d", IconFog},
		{"01", IconClearDay},
		{"99d", IconCloudy},
		{"", IconCloudy},
	}
	for _, tt := range tests {
		if got := Icon(tt.code); got != tt.want {
			t.Errorf("Icon(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
