package domain

import "fmt"

// GenericErrorMessage is returned to clients for failures without a more
// specific public description.
const GenericErrorMessage = "An unexpected error occurred."

// InputError reports a request that cannot be processed as given.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Upstream service names used in UpstreamError.
const (
	ServiceWeather  = "weather"
	ServiceGeocoder = "geocoder"
	ServiceModel    = "model"
	ServiceSMS      = "sms"
)

// UpstreamError reports a failed call to an external provider.
// StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s API error: %d - %s", e.Service, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error: %d", e.Service, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s API error: %v", e.Service, e.Err)
	default:
		return e.Service + " API error"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PublicMessage is the client-facing description. It never includes
// provider response bodies.
func (e *UpstreamError) PublicMessage() string {
	switch e.Service {
	case ServiceWeather:
		if e.StatusCode != 0 {
			return fmt.Sprintf("Weather API error: %d", e.StatusCode)
		}
		return "Weather API error"
	case ServiceModel:
		return "Advisory model error"
	default:
		return GenericErrorMessage
	}
}
