// Command hazards runs hazard detection over a saved OpenWeather 5-day/3-hour
// forecast payload and prints the alerts the advisory service would raise.
// It is useful for checking threshold changes against captured forecasts.
//
// Usage:
//
//	go run ./cmd/hazards -forecast testdata/forecast.json
//	curl -s "$OPENWEATHER_URL" | go run ./cmd/hazards -forecast - -json
//	go run ./cmd/hazards -forecast f.json -events -lat 9.03 -lon 38.74 -at 2024-06-01T06:00:00Z
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
)

type options struct {
	forecastPath string
	asJSON       bool
	events       bool
	lat, lon     float64
	location     string
	at           string
}

func main() {
	var opts options
	flag.StringVar(&opts.forecastPath, "forecast", "", "path to an OpenWeather forecast JSON payload (- for stdin)")
	flag.BoolVar(&opts.asJSON, "json", false, "print alerts as JSON")
	flag.BoolVar(&opts.events, "events", false, "print alerts as published alert events (implies -json)")
	flag.Float64Var(&opts.lat, "lat", 0, "latitude recorded on alert events")
	flag.Float64Var(&opts.lon, "lon", 0, "longitude recorded on alert events")
	flag.StringVar(&opts.location, "location", domain.UnknownLocation, "location recorded on alert events")
	flag.StringVar(&opts.at, "at", "", "RFC3339 detection time for alert events (default now)")
	flag.Parse()

	if opts.forecastPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(opts, os.Stdin, os.Stdout, os.Stderr))
}

func run(opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	data, err := readForecast(opts.forecastPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: read forecast: %v\n", err)
		return 1
	}

	forecast, err := domain.ParseForecast(data)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	alerts := domain.DetectHazards(forecast.Entries)

	if opts.events {
		coord := domain.Coordinate{Lat: opts.lat, Lon: opts.lon}
		if err := coord.Validate(); err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		if opts.at != "" {
			at, err := time.Parse(time.RFC3339, opts.at)
			if err != nil {
				fmt.Fprintf(stderr, "FATAL: invalid -at: %v\n", err)
				return 1
			}
			domain.SetClock(clockwork.NewFakeClockAt(at))
			defer domain.SetClock(nil)
		}
		return writeJSON(stdout, stderr, domain.NewAlertEvents("cli", opts.location, coord, alerts))
	}

	if opts.asJSON {
		return writeJSON(stdout, stderr, alerts)
	}

	fmt.Fprintf(stdout, "Forecast entries: %d\n", len(forecast.Entries))
	if len(alerts) == 0 {
		fmt.Fprintln(stdout, "No hazards detected.")
		return 0
	}
	fmt.Fprintf(stdout, "Hazards detected: %d\n\n", len(alerts))
	for i, a := range alerts {
		fmt.Fprintf(stdout, "  [%d] %-12s %s\n", i+1, a.Kind, a.Description)
	}
	return 0
}

func readForecast(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "FATAL: encode: %v\n", err)
		return 1
	}
	return 0
}
