package opencage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

const providerName = "opencage"

// Client implements domain.Geocoder using the OpenCage Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenCage reverse geocoding client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.opencagedata.com/geocode/v1/json",
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode converts coordinates to the provider's formatted address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// OpenCage accepts "<lat>+<lon>"; the space encodes as '+'.
	params := url.Values{
		"q":              {formatCoord(lat) + " " + formatCoord(lon)},
		"key":            {c.apiKey},
		"limit":          {"1"},
		"no_annotations": {"1"},
	}

	start := time.Now()
	result, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	elapsed := time.Since(start)
	c.metrics.GeocodeAPIDuration.WithLabelValues(providerName).Observe(elapsed.Seconds())
	c.logger.Debug("opencage reverse geocode", "lat", lat, "lon", lon, "duration", elapsed)

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues(providerName, "error").Inc()
	case result.FormattedAddress == "":
		c.metrics.GeocodeRequests.WithLabelValues(providerName, "empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues(providerName, "success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, &domain.UpstreamError{Service: domain.ServiceGeocoder, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.GeocodingResult{}, &domain.UpstreamError{
			Service:    domain.ServiceGeocoder,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var ocResp response
	if err := json.NewDecoder(resp.Body).Decode(&ocResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(ocResp.Results) == 0 {
		return domain.GeocodingResult{}, nil
	}

	r := ocResp.Results[0]
	return domain.GeocodingResult{
		FormattedAddress: r.Formatted,
		PlaceName:        r.Components.placeName(),
		Confidence:       float64(r.Confidence) / 10,
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OpenCage API response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Formatted  string     `json:"formatted"`
	Confidence int        `json:"confidence"` // 0-10, 10 is most precise
	Components components `json:"components"`
}

type components struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
}

func (c components) placeName() string {
	for _, v := range []string{c.City, c.Town, c.Village, c.County} {
		if v != "" {
			return v
		}
	}
	return ""
}
