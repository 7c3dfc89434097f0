package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// HazardKind classifies a hazard alert.
type HazardKind string

const (
	HazardFlood        HazardKind = "flood"
	HazardStorm        HazardKind = "storm"
	HazardHeatwave     HazardKind = "heatwave"
	HazardFrost        HazardKind = "frost"
	HazardThunderstorm HazardKind = "thunderstorm"
)

// Hazard thresholds. Comparisons are strict.
const (
	FloodRainThresholdMm   = 20.0
	StormWindThresholdMs   = 15.0
	HeatwaveTempThresholdC = 35.0
	FrostTempThresholdC    = 5.0
)

// HazardAlert is a human-readable warning derived from one forecast entry.
type HazardAlert struct {
	Description string     `json:"description"`
	Kind        HazardKind `json:"kind,omitempty"`
}

// DetectHazards evaluates every forecast entry against the fixed thresholds
// and returns alerts in forecast order. It never returns nil.
func DetectHazards(entries []ForecastEntry) []HazardAlert {
	alerts := make([]HazardAlert, 0)
	for _, e := range entries {
		alerts = append(alerts, entryHazards(e)...)
	}
	return alerts
}

func entryHazards(e ForecastEntry) []HazardAlert {
	var alerts []HazardAlert

	if e.RainLast3hMm > FloodRainThresholdMm {
		alerts = append(alerts, HazardAlert{
			Kind: HazardFlood,
			Description: fmt.Sprintf("🚨 Flood Alert: Heavy rainfall (%smm) expected on %s. Take precautions!",
				formatMetric(e.RainLast3hMm), e.Timestamp),
		})
	}
	if e.WindSpeedMs > StormWindThresholdMs {
		alerts = append(alerts, HazardAlert{
			Kind: HazardStorm,
			Description: fmt.Sprintf("🌪️ Storm Alert: High winds (%s m/s) expected on %s. Secure your crops and equipment.",
				formatMetric(e.WindSpeedMs), e.Timestamp),
		})
	}
	if e.TempC > HeatwaveTempThresholdC {
		alerts = append(alerts, HazardAlert{
			Kind: HazardHeatwave,
			Description: fmt.Sprintf("🔥 Heatwave Alert: Extremely high temperature (%s°C) expected on %s. Irrigate crops and provide shade if possible.",
				formatMetric(e.TempC), e.Timestamp),
		})
	}
	if e.TempC < FrostTempThresholdC {
		alerts = append(alerts, HazardAlert{
			Kind: HazardFrost,
			Description: fmt.Sprintf("❄️ Frost Alert: Low temperature (%s°C) expected on %s. Protect seedlings and sensitive crops.",
				formatMetric(e.TempC), e.Timestamp),
		})
	}
	if isThunderstorm(e) {
		desc := e.ConditionDescription
		if desc == "" {
			desc = e.ConditionMain
		}
		alerts = append(alerts, HazardAlert{
			Kind: HazardThunderstorm,
			Description: fmt.Sprintf("⚡ Thunderstorm Alert: %s expected on %s. Stay safe and avoid fieldwork.",
				desc, e.Timestamp),
		})
	}
	return alerts
}

func isThunderstorm(e ForecastEntry) bool {
	return strings.Contains(strings.ToLower(e.ConditionMain), "thunderstorm") ||
		strings.Contains(strings.ToLower(e.ConditionDescription), "thunderstorm")
}

// formatMetric renders a number in its shortest form: 25, 15.5, -2.3.
func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
