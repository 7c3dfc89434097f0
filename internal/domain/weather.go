package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// WeatherSnapshot is the current observation at a coordinate. Raw holds the
// provider payload returned to API clients unchanged.
type WeatherSnapshot struct {
	Raw                  json.RawMessage `json:"-"`
	ConditionMain        string          `json:"conditionMain,omitempty"`
	ConditionDescription string          `json:"conditionDescription,omitempty"`
	TempC                float64         `json:"tempC"`
	Humidity             float64         `json:"humidity,omitempty"`
	WindSpeedMs          float64         `json:"windSpeedMs"`
}

// ForecastEntry is one 3-hour forecast step.
type ForecastEntry struct {
	Timestamp            string  `json:"timestamp"`
	ConditionMain        string  `json:"conditionMain,omitempty"`
	ConditionDescription string  `json:"conditionDescription,omitempty"`
	RainLast3hMm         float64 `json:"rain3hMm,omitempty"`
	WindSpeedMs          float64 `json:"windSpeedMs"`
	TempC                float64 `json:"tempC"`
}

// Forecast is a chronological series of entries plus the raw provider payload.
type Forecast struct {
	Raw     json.RawMessage
	Entries []ForecastEntry
}

// OpenWeather payload shapes. Only fields used by the hazard rules and
// prompts are decoded.

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owMain struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type owWind struct {
	Speed float64 `json:"speed"`
}

type owRain struct {
	ThreeHours float64 `json:"3h"`
}

type owCurrent struct {
	Weather []owCondition `json:"weather"`
	Main    owMain        `json:"main"`
	Wind    owWind        `json:"wind"`
}

type owForecast struct {
	List []struct {
		DtTxt   string        `json:"dt_txt"`
		Weather []owCondition `json:"weather"`
		Main    owMain        `json:"main"`
		Wind    owWind        `json:"wind"`
		Rain    *owRain       `json:"rain"`
	} `json:"list"`
}

// ParseCurrentWeather decodes an OpenWeather current-conditions payload.
func ParseCurrentWeather(data []byte) (WeatherSnapshot, error) {
	var cur owCurrent
	if err := json.Unmarshal(data, &cur); err != nil {
		return WeatherSnapshot{}, fmt.Errorf("decode current weather: %w", err)
	}
	snap := WeatherSnapshot{
		Raw:         json.RawMessage(data),
		TempC:       cur.Main.Temp,
		Humidity:    cur.Main.Humidity,
		WindSpeedMs: cur.Wind.Speed,
	}
	if len(cur.Weather) > 0 {
		snap.ConditionMain = cur.Weather[0].Main
		snap.ConditionDescription = cur.Weather[0].Description
	}
	return snap, nil
}

// ParseForecast decodes an OpenWeather 5-day/3-hour forecast payload,
// preserving entry order.
func ParseForecast(data []byte) (Forecast, error) {
	var fc owForecast
	if err := json.Unmarshal(data, &fc); err != nil {
		return Forecast{}, fmt.Errorf("decode forecast: %w", err)
	}
	if fc.List == nil {
		return Forecast{}, errors.New("decode forecast: missing list")
	}

	entries := make([]ForecastEntry, 0, len(fc.List))
	for _, item := range fc.List {
		e := ForecastEntry{
			Timestamp:   item.DtTxt,
			TempC:       item.Main.Temp,
			WindSpeedMs: item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			e.ConditionMain = item.Weather[0].Main
			e.ConditionDescription = item.Weather[0].Description
		}
		if item.Rain != nil {
			e.RainLast3hMm = item.Rain.ThreeHours
		}
		entries = append(entries, e)
	}
	return Forecast{Raw: json.RawMessage(data), Entries: entries}, nil
}
