package normalize

import "strings"

// Internal icon vocabulary. The UI maps these onto its icon font; the server
// never emits provider-specific codes.
const (
	IconClearDay          = "clear-day"
	IconClearNight        = "clear-night"
	IconPartlyCloudyDay   = "partly-cloudy-day"
	IconPartlyCloudyNight = "partly-cloudy-night"
	IconCloudy            = "cloudy"
	IconRain              = "rain"
	IconThunderstorm      = "thunderstorm"
	IconSnow              = "snow"
	IconFog               = "fog"
	IconWind              = "wind"
)

// Icon maps an OpenWeatherMap icon code (e.g. "01d", "10n") to the internal
// vocabulary. The trailing d/n selects the day or night variant where one
// exists; codes without a suffix default to the day variant.
func Icon(code string) string {
	night := strings.HasSuffix(code, "n")
	base := strings.TrimRight(code, "dn")

	switch base {
	case "01":
		if night {
			return IconClearNight
		}
		return IconClearDay
	case "02":
		if night {
			return IconPartlyCloudyNight
		}
		return IconPartlyCloudyDay
	case "03", "04":
		return IconCloudy
	case "09", "10":
		return IconRain
	case "11":
		return IconThunderstorm
	case "13":
		return IconSnow
	case "50":
		return IconFog
	default:
		return IconCloudy
	}
}
