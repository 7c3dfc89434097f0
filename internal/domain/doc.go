// Package domain models agricultural weather advisories for smallholder farms.
//
// # Data Sources
//
// Weather comes from the OpenWeather 2.5 API in metric units. The forecast
// endpoint returns up to 40 entries in 3-hour steps; each entry carries a
// "dt_txt" timestamp ("2024-06-01 12:00:00", UTC), a condition group
// ("weather[0].main", e.g. "Thunderstorm") with a free-text description, the
// rain volume for the last 3 hours ("rain.3h", mm), wind speed ("wind.speed",
// m/s) and temperature ("main.temp", °C). Missing fields decode as zero.
//
// # Hazard Rules
//
// Every forecast entry is checked against fixed thresholds in this order:
//
//	flood:        rain over 3h  > 20 mm
//	storm:        wind speed    > 15 m/s
//	heatwave:     temperature   > 35 °C
//	frost:        temperature   < 5 °C
//	thunderstorm: condition text contains "thunderstorm" (any case)
//
// One entry may raise several alerts. Alerts keep forecast order, then check
// order within an entry. See [DetectHazards].
//
// # Languages
//
// Advice and alert translations target English (en), Amharic (am),
// Afaan Oromo (om) or Tigrinya (ti). Unknown codes fall back to English.
//
// # Degradation
//
// Location lookup, alert translation and advisory parsing never fail a
// request. They return a [Result] whose Fallback flag marks a documented
// default value.
package domain
