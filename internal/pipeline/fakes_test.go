package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

// --- fakes ---

type fakeGeocoder struct {
	result domain.GeocodingResult
	err    error
	calls  atomic.Int32
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	f.calls.Add(1)
	return f.result, f.err
}

type fakeWeather struct {
	currentRaw  string
	forecast    []domain.ForecastEntry
	currentErr  error
	forecastErr error
	calls       atomic.Int32
}

func (f *fakeWeather) Current(_ context.Context, _ domain.Coordinate) (domain.WeatherSnapshot, error) {
	f.calls.Add(1)
	if f.currentErr != nil {
		return domain.WeatherSnapshot{}, f.currentErr
	}
	return domain.ParseCurrentWeather([]byte(f.currentRaw))
}

func (f *fakeWeather) Forecast(_ context.Context, _ domain.Coordinate) (domain.Forecast, error) {
	f.calls.Add(1)
	if f.forecastErr != nil {
		return domain.Forecast{}, f.forecastErr
	}
	raw, _ := json.Marshal(map[string]any{"list": f.forecast})
	return domain.Forecast{Raw: raw, Entries: f.forecast}, nil
}

type fakeModel struct {
	respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (f *fakeModel) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(prompt)
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func replyWith(text string) *fakeModel {
	return &fakeModel{respond: func(string) (string, error) { return text, nil }}
}

func failWith(err error) *fakeModel {
	return &fakeModel{respond: func(string) (string, error) { return "", err }}
}

type fakeDirectory struct {
	farmers []domain.FarmerContact
	err     error
	calls   atomic.Int32
}

func (f *fakeDirectory) RegisteredFarmers(_ context.Context) ([]domain.FarmerContact, error) {
	f.calls.Add(1)
	return f.farmers, f.err
}

type sentSMS struct {
	phone   string
	message string
}

type fakeSender struct {
	fail func(phone, message string) error

	mu       sync.Mutex
	attempts []sentSMS
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeSender) Send(ctx context.Context, phone, message string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.attempts = append(f.attempts, sentSMS{phone: phone, message: message})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.fail != nil {
		return f.fail(phone, message)
	}
	return nil
}

func (f *fakeSender) sent() []sentSMS {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentSMS(nil), f.attempts...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.AlertEvent
	err    error
}

func (f *fakePublisher) PublishAlerts(_ context.Context, events []domain.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return f.err
}

// stalledPublisher never reaches the broker and returns once ctx is done.
type stalledPublisher struct {
	calls atomic.Int32
}

func (f *stalledPublisher) PublishAlerts(ctx context.Context, _ []domain.AlertEvent) error {
	f.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func farmers(phones ...string) []domain.FarmerContact {
	out := make([]domain.FarmerContact, len(phones))
	for i, p := range phones {
		out[i] = domain.FarmerContact{PhoneNumber: p}
	}
	return out
}
