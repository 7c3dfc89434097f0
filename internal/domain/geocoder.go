package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score, 0 when not reported
}

// Geocoder resolves coordinates to a human-readable place.
type Geocoder interface {
	// ReverseGeocode converts coordinates to place details. An empty result
	// with a nil error means the provider knows no place at that point.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
