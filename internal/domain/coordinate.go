package domain

import "fmt"

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate lies within geographic bounds.
// Zero values are valid; presence is checked by the caller.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return &InputError{Message: fmt.Sprintf("lat must be between -90 and 90, got %g", c.Lat)}
	}
	if c.Lon < -180 || c.Lon > 180 {
		return &InputError{Message: fmt.Sprintf("lon must be between -180 and 180, got %g", c.Lon)}
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%g, %g", c.Lat, c.Lon)
}
