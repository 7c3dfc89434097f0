package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

// Request is a validated advisory request.
type Request struct {
	RequestID string
	Coord     domain.Coordinate
	Language  domain.LanguageCode
}

// Advice is the advisory payload plus the (possibly translated) hazard alerts.
type Advice struct {
	domain.AdvisoryPayload
	DisasterAlerts []domain.HazardAlert `json:"disasterAlerts"`
}

// Response is returned to API clients. Weather payloads are passed through
// from the provider unchanged.
type Response struct {
	Location     string          `json:"location"`
	WeatherData  json.RawMessage `json:"weatherData"`
	ForecastData json.RawMessage `json:"forecastData"`
	Advice       Advice          `json:"advice"`
}

// Deps wires the orchestrator's collaborators. Geocoder, Broadcaster and
// Publisher are optional.
type Deps struct {
	Geocoder         domain.Geocoder
	Weather          domain.WeatherProvider
	Generator        *Generator
	Translator       *Translator
	Broadcaster      *Broadcaster
	Publisher        domain.AlertPublisher
	BroadcastTimeout time.Duration
}

// Orchestrator runs one advisory request end to end. Alert broadcasts run in
// the background after the response is built; Drain waits for them.
type Orchestrator struct {
	geocoder         domain.Geocoder
	weather          domain.WeatherProvider
	generator        *Generator
	translator       *Translator
	broadcaster      *Broadcaster
	publisher        domain.AlertPublisher
	broadcastTimeout time.Duration

	logger  *slog.Logger
	metrics *observability.Metrics

	// mu orders inflight.Add against Drain so no dispatch starts after
	// draining is set.
	mu       sync.Mutex
	inflight sync.WaitGroup
	draining atomic.Bool
}

// New creates an Orchestrator.
func New(deps Deps, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	timeout := deps.BroadcastTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Orchestrator{
		geocoder:         deps.Geocoder,
		weather:          deps.Weather,
		generator:        deps.Generator,
		translator:       deps.Translator,
		broadcaster:      deps.Broadcaster,
		publisher:        deps.Publisher,
		broadcastTimeout: timeout,
		logger:           logger,
		metrics:          metrics,
	}
}

// CheckReadiness reports an error once the orchestrator has started draining.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if o.draining.Load() {
		return errors.New("shutting down")
	}
	return nil
}

// Advise resolves the location, fetches weather, detects hazards, and
// generates localized advice. Weather and advisory model failures are
// returned; every other stage degrades.
func (o *Orchestrator) Advise(ctx context.Context, req Request) (Response, error) {
	if err := req.Coord.Validate(); err != nil {
		return Response{}, err
	}
	req.Language = domain.ParseLanguage(string(req.Language))
	logger := o.logger.With("request_id", req.RequestID)

	start := time.Now()
	location := domain.ResolveLocation(ctx, o.geocoder, req.Coord, logger)
	o.observe("locate", start)

	current, forecast, err := o.fetchWeather(ctx, req.Coord)
	if err != nil {
		logger.Error("weather fetch failed", "error", err)
		return Response{}, err
	}

	alerts := domain.DetectHazards(forecast.Entries)
	for _, a := range alerts {
		o.metrics.HazardAlerts.WithLabelValues(string(a.Kind)).Inc()
	}

	var (
		advice     domain.Result[domain.AdvisoryPayload]
		translated domain.Result[[]domain.HazardAlert]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer o.observe("advisory", time.Now())
		var err error
		advice, err = o.generator.Generate(gctx, AdvisoryInput{
			Location: location.Value,
			Coord:    req.Coord,
			Current:  current,
			Forecast: forecast,
			Language: req.Language,
		})
		return err
	})
	g.Go(func() error {
		defer o.observe("translate", time.Now())
		translated = o.translator.Translate(gctx, alerts, req.Language)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("advisory generation failed", "error", err)
		return Response{}, err
	}

	if len(alerts) > 0 {
		o.dispatch(ctx, req, location.Value, alerts, advice.Value.Summary(), logger)
	}

	logger.Info("advisory served",
		"location", location.Value,
		"location_fallback", location.Fallback,
		"language", req.Language,
		"alerts", len(alerts),
		"advice_fallback", advice.Fallback,
		"translation_fallback", translated.Fallback,
	)

	disaster := translated.Value
	if disaster == nil {
		disaster = []domain.HazardAlert{}
	}
	return Response{
		Location:     location.Value,
		WeatherData:  current.Raw,
		ForecastData: forecast.Raw,
		Advice: Advice{
			AdvisoryPayload: advice.Value,
			DisasterAlerts:  disaster,
		},
	}, nil
}

func (o *Orchestrator) fetchWeather(ctx context.Context, coord domain.Coordinate) (domain.WeatherSnapshot, domain.Forecast, error) {
	defer o.observe("weather", time.Now())

	var (
		current  domain.WeatherSnapshot
		forecast domain.Forecast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = o.weather.Current(gctx, coord)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = o.weather.Forecast(gctx, coord)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.WeatherSnapshot{}, domain.Forecast{}, err
	}
	return current, forecast, nil
}

// dispatch publishes and broadcasts alerts in the background. The work is
// detached from the request context so a client disconnect does not cancel it.
// The publish and the SMS broadcast run side by side, so a stalled broker
// cannot spend the broadcast deadline.
func (o *Orchestrator) dispatch(ctx context.Context, req Request, location string, alerts []domain.HazardAlert, summary string, logger *slog.Logger) {
	if o.broadcaster == nil && o.publisher == nil {
		return
	}

	o.mu.Lock()
	if o.draining.Load() {
		o.mu.Unlock()
		logger.Warn("shutting down, alert dispatch skipped", "alerts", len(alerts))
		return
	}
	o.inflight.Add(1)
	o.mu.Unlock()
	o.metrics.BroadcastsInFlight.Inc()

	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.broadcastTimeout)

	go func() {
		defer o.inflight.Done()
		defer o.metrics.BroadcastsInFlight.Dec()
		defer cancel()
		defer o.observe("broadcast", time.Now())

		var g errgroup.Group
		if o.publisher != nil {
			g.Go(func() error {
				o.publish(bctx, req, location, alerts, logger)
				return nil
			})
		}
		if o.broadcaster != nil {
			g.Go(func() error {
				o.broadcaster.Broadcast(bctx, alerts, summary)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (o *Orchestrator) publish(ctx context.Context, req Request, location string, alerts []domain.HazardAlert, logger *slog.Logger) {
	events := domain.NewAlertEvents(req.RequestID, location, req.Coord, alerts)
	if err := o.publisher.PublishAlerts(ctx, events); err != nil {
		o.metrics.AlertEventsPublished.WithLabelValues("error").Add(float64(len(events)))
		logger.Warn("alert event publish failed", "error", err)
		return
	}
	o.metrics.AlertEventsPublished.WithLabelValues("success").Add(float64(len(events)))
}

// Drain marks the orchestrator not ready and waits for background broadcasts
// until ctx is done.
func (o *Orchestrator) Drain(ctx context.Context) error {
	o.mu.Lock()
	o.draining.Store(true)
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) observe(stage string, start time.Time) {
	o.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
