package googlemaps

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"googlemaps.github.io/maps"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

const providerName = "googlemaps"

// Client implements domain.Geocoder using Google Maps reverse geocoding.
type Client struct {
	maps    *maps.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a Google Maps geocoding client. Extra options are applied
// after the API key, e.g. maps.WithBaseURL in tests.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...maps.ClientOption) (*Client, error) {
	all := append([]maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)

	mc, err := maps.NewClient(all...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Client{maps: mc, metrics: metrics, logger: logger}, nil
}

// ReverseGeocode returns the most specific formatted address for a coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	start := time.Now()
	results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lon},
	})
	c.metrics.GeocodeAPIDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(providerName, "error").Inc()
		return domain.GeocodingResult{}, &domain.UpstreamError{Service: domain.ServiceGeocoder, Err: err}
	}
	if len(results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues(providerName, "empty").Inc()
		return domain.GeocodingResult{}, nil
	}

	c.metrics.GeocodeRequests.WithLabelValues(providerName, "success").Inc()
	r := results[0]
	c.logger.Debug("google reverse geocode", "lat", lat, "lon", lon, "place_id", r.PlaceID)
	return domain.GeocodingResult{
		FormattedAddress: r.FormattedAddress,
		PlaceName:        locality(r.AddressComponents),
	}, nil
}

func locality(components []maps.AddressComponent) string {
	for _, kind := range []string{"locality", "administrative_area_level_2", "administrative_area_level_1"} {
		for _, ac := range components {
			if slices.Contains(ac.Types, kind) {
				return ac.LongName
			}
		}
	}
	return ""
}
