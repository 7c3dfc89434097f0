package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastPayload = `{
  "cod": "200",
  "list": [
    {"dt": 1717243200, "main": {"temp": 24.1, "humidity": 60}, "weather": [{"main": "Rain", "description": "heavy intensity rain"}], "wind": {"speed": 3.2}, "rain": {"3h": 22.4}, "dt_txt": "2024-06-01 12:00:00"},
    {"dt": 1717254000, "main": {"temp": 19.5}, "weather": [{"main": "Clouds", "description": "overcast clouds"}], "wind": {"speed": 5.0}, "dt_txt": "2024-06-01 15:00:00"}
  ],
  "city": {"name": "Addis Ababa"}
}`

func TestParseForecast(t *testing.T) {
	fc, err := ParseForecast([]byte(forecastPayload))
	require.NoError(t, err)

	require.Len(t, fc.Entries, 2)
	assert.Equal(t, ForecastEntry{
		Timestamp:            "2024-06-01 12:00:00",
		ConditionMain:        "Rain",
		ConditionDescription: "heavy intensity rain",
		RainLast3hMm:         22.4,
		WindSpeedMs:          3.2,
		TempC:                24.1,
	}, fc.Entries[0])
	assert.Zero(t, fc.Entries[1].RainLast3hMm)
	assert.JSONEq(t, forecastPayload, string(fc.Raw))
}

func TestParseForecast_Errors(t *testing.T) {
	_, err := ParseForecast([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseForecast([]byte(`{"cod":"200"}`))
	assert.ErrorContains(t, err, "missing list")
}

func TestParseCurrentWeather(t *testing.T) {
	data := []byte(`{"weather":[{"main":"Clear","description":"clear sky"}],"main":{"temp":27.3,"humidity":40},"wind":{"speed":2.1},"name":"Adama"}`)

	snap, err := ParseCurrentWeather(data)
	require.NoError(t, err)

	assert.Equal(t, "Clear", snap.ConditionMain)
	assert.Equal(t, "clear sky", snap.ConditionDescription)
	assert.Equal(t, 27.3, snap.TempC)
	assert.Equal(t, 40.0, snap.Humidity)
	assert.Equal(t, 2.1, snap.WindSpeedMs)
	assert.Equal(t, string(data), string(snap.Raw))
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, Coordinate{}.Validate())
	assert.NoError(t, Coordinate{Lat: 90, Lon: -180}.Validate())

	var inputErr *InputError
	assert.ErrorAs(t, Coordinate{Lat: 91}.Validate(), &inputErr)
	assert.ErrorAs(t, Coordinate{Lon: 180.5}.Validate(), &inputErr)
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, Amharic, ParseLanguage("am"))
	assert.Equal(t, Oromo, ParseLanguage(" OM "))
	assert.Equal(t, Tigrinya, ParseLanguage("ti"))
	assert.Equal(t, English, ParseLanguage("fr"))
	assert.Equal(t, English, ParseLanguage(""))

	assert.Equal(t, "Amharic", Amharic.Name())
	assert.Equal(t, "English", LanguageCode("xx").Name())
}

func TestUpstreamError(t *testing.T) {
	err := &UpstreamError{Service: ServiceWeather, StatusCode: 401, Message: "Invalid API key"}

	assert.Equal(t, "weather API error: 401 - Invalid API key", err.Error())
	assert.Equal(t, "Weather API error: 401", err.PublicMessage())
	assert.Equal(t, "Advisory model error", (&UpstreamError{Service: ServiceModel}).PublicMessage())
	assert.Equal(t, GenericErrorMessage, (&UpstreamError{Service: ServiceSMS}).PublicMessage())
}
