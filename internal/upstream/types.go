package upstream

// Raw OpenWeatherMap response shapes. Only the fields the normalizer consumes
// are decoded; everything else in the payload is ignored.

// CurrentResponse is the /data/2.5/weather payload (units=imperial).
type CurrentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"` // shift from UTC in seconds
	Dt       int64 `json:"dt"`
}

// ForecastResponse is the /data/2.5/forecast payload: 3-hourly entries the
// normalizer reduces to one per calendar day.
type ForecastResponse struct {
	List []ForecastEntry `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

// ForecastEntry is a single 3-hour forecast slot.
type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMax float64 `json:"temp_max"`
		TempMin float64 `json:"temp_min"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
	Pop float64 `json:"pop"` // precipitation probability 0..1
}

type uvResponse struct {
	Value float64 `json:"value"`
}

type airResponse struct {
	List []struct {
		Main struct {
			AQI float64 `json:"aqi"` // provider scale 1..6
		} `json:"main"`
	} `json:"list"`
}

type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type apiError struct {
	Message string `json:"message"`
}
