package openweather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "ow-key"

var addisAbaba = domain.Coordinate{Lat: 9.03, Lon: 38.74}

func testClient(baseURL string) *Client {
	return NewClient(testKey, baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "9.03", q.Get("lat"))
		assert.Equal(t, "38.74", q.Get("lon"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, testKey, q.Get("appid"))
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clouds","description":"few clouds"}],"main":{"temp":21.4,"humidity":55},"wind":{"speed":3.1}}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).Current(context.Background(), addisAbaba)
	require.NoError(t, err)

	assert.Equal(t, "Clouds", snap.ConditionMain)
	assert.Equal(t, 21.4, snap.TempC)
	assert.Contains(t, string(snap.Raw), `"few clouds"`)
}

func TestClient_Forecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		_, _ = w.Write([]byte(`{"list":[
			{"dt_txt":"2024-06-01 12:00:00","main":{"temp":36.5},"weather":[{"main":"Clear","description":"clear sky"}],"wind":{"speed":2}},
			{"dt_txt":"2024-06-01 15:00:00","main":{"temp":30},"weather":[{"main":"Rain","description":"moderate rain"}],"wind":{"speed":4},"rain":{"3h":6.2}}
		]}`))
	}))
	defer srv.Close()

	fc, err := testClient(srv.URL).Forecast(context.Background(), addisAbaba)
	require.NoError(t, err)

	require.Len(t, fc.Entries, 2)
	assert.Equal(t, "2024-06-01 12:00:00", fc.Entries[0].Timestamp)
	assert.Equal(t, 36.5, fc.Entries[0].TempC)
	assert.Equal(t, 6.2, fc.Entries[1].RainLast3hMm)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), addisAbaba)
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, domain.ServiceWeather, upstream.Service)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "Invalid API key.", upstream.Message)
	assert.Equal(t, "Weather API error: 401", upstream.PublicMessage())
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), addisAbaba)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "Bad Gateway", upstream.Message)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Current(context.Background(), addisAbaba)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Zero(t, upstream.StatusCode)
	assert.Equal(t, "Weather API error", upstream.PublicMessage())
}
