package normalize

import (
	"math"
	"time"

	"skycast/internal/models"
	"skycast/internal/upstream"
)

// noonHour is the preferred sample hour when a day has multiple forecast slots.
const noonHour = 12

// forecastDays reduces the provider's 3-hourly forecast to exactly
// models.ForecastLength calendar days. When the forecast payload is missing
// or empty, a seed day is synthesized from current conditions so the snapshot
// shape stays fixed.
func (n *Normalizer) forecastDays(raw *upstream.ForecastResponse, current models.CurrentConditions) []models.ForecastDay {
	now := n.now()

	var days []models.ForecastDay
	if raw != nil && len(raw.List) > 0 {
		days = n.reduceDaily(raw, now)
	}
	if len(days) == 0 {
		days = []models.ForecastDay{{
			Date:                now.Format("2006-01-02"),
			DayName:             "Today",
			Icon:                current.Icon,
			Description:         current.Description,
			TempHigh:            current.Temperature,
			TempLow:             current.Temperature,
			PrecipitationChance: 0,
		}}
	}
	if len(days) > models.ForecastLength {
		days = days[:models.ForecastLength]
	}
	return n.pad(days)
}

// reduceDaily groups sub-daily entries by calendar date in the forecast
// city's timezone, preferring the noon sample when a date has several.
func (n *Normalizer) reduceDaily(raw *upstream.ForecastResponse, now time.Time) []models.ForecastDay {
	tz := time.FixedZone("local", raw.City.Timezone)

	type sample struct {
		entry  upstream.ForecastEntry
		isNoon bool
	}
	byDate := make(map[string]sample)
	var order []string

	for _, entry := range raw.List {
		t := time.Unix(entry.Dt, 0).In(tz)
		dateStr := t.Format("2006-01-02")
		isNoon := t.Hour() == noonHour

		prev, seen := byDate[dateStr]
		if !seen {
			order = append(order, dateStr)
		}
		if !seen || (isNoon && !prev.isNoon) {
			byDate[dateStr] = sample{entry: entry, isNoon: isNoon}
		}
	}

	days := make([]models.ForecastDay, 0, len(order))
	for _, dateStr := range order {
		entry := byDate[dateStr].entry

		description := "Clear"
		iconCode := "01d"
		if len(entry.Weather) > 0 {
			if entry.Weather[0].Main != "" {
				description = entry.Weather[0].Main
			}
			if entry.Weather[0].Icon != "" {
				iconCode = entry.Weather[0].Icon
			}
		}

		days = append(days, models.ForecastDay{
			Date:                dateStr,
			DayName:             DayName(dateStr, now),
			Icon:                Icon(iconCode),
			Description:         description,
			TempHigh:            int(math.Round(entry.Main.TempMax)),
			TempLow:             int(math.Round(entry.Main.TempMin)),
			PrecipitationChance: int(math.Round(entry.Pop * 100)),
		})
	}
	return days
}

// pad extends the forecast to the fixed length by repeating the last known
// day on successive dates. Temperatures get ±3 unit jitter only when a seeded
// source was injected; otherwise padding is a verbatim repeat. This is a
// documented fallback policy, not a forecasting model.
func (n *Normalizer) pad(days []models.ForecastDay) []models.ForecastDay {
	now := n.now()
	for len(days) < models.ForecastLength {
		last := days[len(days)-1]

		date, err := time.Parse("2006-01-02", last.Date)
		if err != nil {
			break
		}
		nextDate := date.AddDate(0, 0, 1).Format("2006-01-02")

		next := last
		next.Date = nextDate
		next.DayName = DayName(nextDate, now)
		if n.jitter != nil {
			next.TempHigh += n.jitter.Intn(6) - 3
			next.TempLow += n.jitter.Intn(6) - 3
		}
		days = append(days, next)
	}
	return days
}
