package domain

import "context"

// WeatherProvider fetches observations and forecasts for a coordinate.
type WeatherProvider interface {
	Current(ctx context.Context, coord Coordinate) (WeatherSnapshot, error)
	Forecast(ctx context.Context, coord Coordinate) (Forecast, error)
}

// TextModel completes a single prompt with free text.
type TextModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SMSSender delivers one text message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// FarmerDirectory lists farmers registered for alerts.
type FarmerDirectory interface {
	RegisteredFarmers(ctx context.Context) ([]FarmerContact, error)
}

// AlertPublisher forwards hazard alerts to downstream consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, events []AlertEvent) error
}
