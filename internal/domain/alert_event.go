package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertEvent is the published form of a hazard alert.
type AlertEvent struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"request_id"`
	Kind        HazardKind `json:"kind"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	DetectedAt  time.Time  `json:"detected_at"`
}

// NewAlertEvents stamps alerts for publication. All events of one request
// share a detection time.
func NewAlertEvents(requestID, location string, coord Coordinate, alerts []HazardAlert) []AlertEvent {
	now := clock.Now().UTC()
	events := make([]AlertEvent, len(alerts))
	for i, a := range alerts {
		events[i] = AlertEvent{
			ID:          uuid.NewString(),
			RequestID:   requestID,
			Kind:        a.Kind,
			Description: a.Description,
			Location:    location,
			Lat:         coord.Lat,
			Lon:         coord.Lon,
			DetectedAt:  now,
		}
	}
	return events
}
