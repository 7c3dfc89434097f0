package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AdvisoryPayload is the structured agronomic advice produced by the text
// model. Every field is optional.
type AdvisoryPayload struct {
	WeatherPrediction     string   `json:"weatherPrediction,omitempty"`
	SoilAndWaterAdvice    string   `json:"soilAndWaterAdvice,omitempty"`
	PestAndDiseaseAdvice  string   `json:"pestAndDiseaseAdvice,omitempty"`
	RecommendedCrops      []string `json:"recommendedCrops,omitempty"`
	EmergencyPreparedness string   `json:"emergencyPreparedness,omitempty"`
	LocationSpecificTips  string   `json:"locationSpecificTips,omitempty"`
}

// IsEmpty reports whether no advice field is set.
func (p AdvisoryPayload) IsEmpty() bool {
	return p.WeatherPrediction == "" &&
		p.SoilAndWaterAdvice == "" &&
		p.PestAndDiseaseAdvice == "" &&
		len(p.RecommendedCrops) == 0 &&
		p.EmergencyPreparedness == "" &&
		p.LocationSpecificTips == ""
}

// Summary renders the short form appended to SMS alerts. Blank fields read
// "N/A". An empty payload yields an empty summary.
func (p AdvisoryPayload) Summary() string {
	if p.IsEmpty() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Weather: %s.\n", orNA(p.WeatherPrediction))
	fmt.Fprintf(&b, "Soil & Water: %s.\n", orNA(p.SoilAndWaterAdvice))
	fmt.Fprintf(&b, "Pest & Disease: %s.\n", orNA(p.PestAndDiseaseAdvice))
	fmt.Fprintf(&b, "Recommended Crops: %s.", orNA(strings.Join(p.RecommendedCrops, ", ")))
	return b.String()
}

func orNA(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	if s == "" {
		return "N/A"
	}
	return s
}

// ParseAdvisory decodes model output into an AdvisoryPayload. Output that is
// not a JSON object degrades to an empty payload.
func ParseAdvisory(text string) Result[AdvisoryPayload] {
	normalized := NormalizeModelJSON(text)
	if normalized == "" {
		return Degraded(AdvisoryPayload{}, errors.New("empty model output"))
	}
	var p AdvisoryPayload
	if err := json.Unmarshal([]byte(normalized), &p); err != nil {
		return Degraded(AdvisoryPayload{}, fmt.Errorf("decode advisory: %w", err))
	}
	return Resolved(p)
}
