package domain

import (
	"context"
	"errors"
	"log/slog"
)

// UnknownLocation is the place name used when reverse geocoding is
// unavailable.
const UnknownLocation = "Unknown Location"

var (
	errGeocoderDisabled = errors.New("geocoder disabled")
	errNoPlace          = errors.New("no place found")
)

// ResolveLocation reverse geocodes coord into a place name. If geocoder is
// nil, fails, or finds nothing, the result is UnknownLocation flagged as a
// fallback.
func ResolveLocation(ctx context.Context, geocoder Geocoder, coord Coordinate, logger *slog.Logger) Result[string] {
	if geocoder == nil {
		return Degraded(UnknownLocation, errGeocoderDisabled)
	}

	result, err := geocoder.ReverseGeocode(ctx, coord.Lat, coord.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", coord.Lat,
			"lon", coord.Lon,
			"error", err,
		)
		return Degraded(UnknownLocation, err)
	}
	if result.FormattedAddress == "" {
		logger.Debug("reverse geocoding found no place", "lat", coord.Lat, "lon", coord.Lon)
		return Degraded(UnknownLocation, errNoPlace)
	}
	return Resolved(result.FormattedAddress)
}
