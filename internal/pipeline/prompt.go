package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
)

const advisorySchema = `{
  "weatherPrediction": "...",
  "soilAndWaterAdvice": "...",
  "pestAndDiseaseAdvice": "...",
  "recommendedCrops": ["...", "..."],
  "emergencyPreparedness": "...",
  "locationSpecificTips": "..."
}`

func advisoryPrompt(in AdvisoryInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an agricultural advisor for Ethiopian farmers. Provide all advice in %s.\n\n", in.Language.Name())
	fmt.Fprintf(&b, "Location: %s (%s)\n", in.Location, in.Coord)
	fmt.Fprintf(&b, "Current weather: %s\n", currentWeatherJSON(in.Current))
	fmt.Fprintf(&b, "Forecast (3-hour steps): %s\n\n", forecastJSON(in.Forecast.Entries))
	b.WriteString("Based on this data, give practical farming advice. Respond only with a JSON object using exactly these keys:\n")
	b.WriteString(advisorySchema)
	return b.String()
}

func translationPrompt(alerts []domain.HazardAlert, lang domain.LanguageCode) string {
	descriptions := make([]string, len(alerts))
	for i, a := range alerts {
		descriptions[i] = a.Description
	}
	return fmt.Sprintf(
		"Translate the following disaster alerts into %s. Keep the order and return exactly %d items. "+
			"Return a JSON array like [{ \"description\": \"...\" }, ...]:\n%s",
		lang.Name(), len(alerts), strings.Join(descriptions, "\n"),
	)
}

func currentWeatherJSON(snap domain.WeatherSnapshot) string {
	if len(snap.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, snap.Raw); err == nil {
			return buf.String()
		}
	}
	data, _ := json.Marshal(snap)
	return string(data)
}

func forecastJSON(entries []domain.ForecastEntry) string {
	if entries == nil {
		entries = []domain.ForecastEntry{}
	}
	data, _ := json.Marshal(entries)
	return string(data)
}
