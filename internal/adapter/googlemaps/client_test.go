package googlemaps

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/farm-advisory-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", 5*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)), maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "12.6,37.46667", r.URL.Query().Get("latlng"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Gondar, Ethiopia",
				"place_id": "abc",
				"address_components": [
					{"long_name": "Central Gondar", "types": ["administrative_area_level_2", "political"]},
					{"long_name": "Gondar", "types": ["locality", "political"]}
				]
			}]
		}`))
	})

	res, err := c.ReverseGeocode(context.Background(), 12.6, 37.46667)
	require.NoError(t, err)

	assert.Equal(t, "Gondar, Ethiopia", res.FormattedAddress)
	assert.Equal(t, "Gondar", res.PlaceName)
}

func TestClient_ReverseGeocode_EmptyResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK", "results": []}`))
	})

	res, err := c.ReverseGeocode(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res.FormattedAddress)
}

func TestClient_ReverseGeocode_Denied(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`))
	})

	_, err := c.ReverseGeocode(context.Background(), 9.03, 38.74)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geocoder API error")
}
