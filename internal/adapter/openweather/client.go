// Package openweather implements domain.WeatherProvider against the
// OpenWeather 2.5 current-weather and 5-day/3-hour forecast endpoints.
package openweather

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
)

// maxBodyBytes bounds provider payloads. A full forecast is about 16 KiB.
const maxBodyBytes = 1 << 20

// Client fetches metric-unit weather data for a coordinate.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. baseURL is the API root, e.g.
// https://api.openweathermap.org/data/2.5.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Current returns the latest observation.
func (c *Client) Current(ctx context.Context, coord domain.Coordinate) (domain.WeatherSnapshot, error) {
	body, err := c.get(ctx, "weather", coord)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return domain.ParseCurrentWeather(body)
}

// Forecast returns the 5-day forecast in 3-hour steps.
func (c *Client) Forecast(ctx context.Context, coord domain.Coordinate) (domain.Forecast, error) {
	body, err := c.get(ctx, "forecast", coord)
	if err != nil {
		return domain.Forecast{}, err
	}
	return domain.ParseForecast(body)
}

func (c *Client) get(ctx context.Context, endpoint string, coord domain.Coordinate) ([]byte, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: domain.ServiceWeather, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Service: domain.ServiceWeather, Err: fmt.Errorf("read %s response: %w", endpoint, err)}
	}
	c.logger.Debug("openweather request", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Service:    domain.ServiceWeather,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

// errorMessage extracts OpenWeather's {"cod": ..., "message": "..."} text.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return http.StatusText(http.StatusBadGateway)
	}
	return e.Message
}
