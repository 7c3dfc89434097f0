package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var addisAbaba = Coordinate{Lat: 9.03, Lon: 38.74}

// --- tests ---

func TestResolveLocation_NilGeocoder(t *testing.T) {
	res := ResolveLocation(context.Background(), nil, addisAbaba, discardLogger())

	assert.Equal(t, UnknownLocation, res.Value)
	assert.True(t, res.Fallback)
}

func TestResolveLocation_Success(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{FormattedAddress: "Addis Ababa, Ethiopia"}}

	res := ResolveLocation(context.Background(), geo, addisAbaba, discardLogger())

	assert.Equal(t, "Addis Ababa, Ethiopia", res.Value)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, geo.calls)
}

func TestResolveLocation_ProviderError(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("timeout")}

	res := ResolveLocation(context.Background(), geo, addisAbaba, discardLogger())

	assert.Equal(t, UnknownLocation, res.Value)
	assert.True(t, res.Fallback)
	assert.EqualError(t, res.Cause, "timeout")
}

func TestResolveLocation_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}

	res := ResolveLocation(context.Background(), geo, Coordinate{}, discardLogger())

	assert.Equal(t, UnknownLocation, res.Value)
	assert.True(t, res.Fallback)
}

func TestResolveLocation_Stable(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{FormattedAddress: "Bahir Dar, Ethiopia"}}

	first := ResolveLocation(context.Background(), geo, addisAbaba, discardLogger())
	second := ResolveLocation(context.Background(), geo, addisAbaba, discardLogger())

	assert.Equal(t, first, second)
	assert.Equal(t, 2, geo.calls)
}
