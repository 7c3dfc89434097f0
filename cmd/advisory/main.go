package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/farm-advisory-service/internal/adapter/firestoredb"
	"github.com/couchcryptid/farm-advisory-service/internal/adapter/googlemaps"
	httpadapter "github.com/couchcryptid/farm-advisory-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/farm-advisory-service/internal/adapter/kafka"
	"github.com/couchcryptid/farm-advisory-service/internal/adapter/llm"
	"github.com/couchcryptid/farm-advisory-service/internal/adapter/opencage"
	"github.com/couchcryptid/farm-advisory-service/internal/adapter/openweather"
	"github.com/couchcryptid/farm-advisory-service/internal/adapter/postgres"
	"github.com/couchcryptid/farm-advisory-service/internal/adapter/textbee"
	"github.com/couchcryptid/farm-advisory-service/internal/config"
	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
	"github.com/couchcryptid/farm-advisory-service/internal/pipeline"
)

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	geocoder, err := newGeocoder(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to initialize geocoder", "error", err)
		os.Exit(1)
	}

	model := llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout, logger)
	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.ProviderTimeout, logger)

	var closers []namedCloser

	broadcaster, err := newBroadcaster(ctx, cfg, metrics, logger, &closers)
	if err != nil {
		logger.Error("failed to initialize broadcaster", "error", err)
		os.Exit(1)
	}

	// Only assign the publisher when enabled so the interface stays nil otherwise.
	var publisher domain.AlertPublisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		closers = append(closers, namedCloser{"kafka writer", writer})
		logger.Info("hazard alert stream enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertTopic)
	}

	orch := pipeline.New(pipeline.Deps{
		Geocoder:         geocoder,
		Weather:          weather,
		Generator:        pipeline.NewGenerator(model, logger, metrics),
		Translator:       pipeline.NewTranslator(model, logger, metrics),
		Broadcaster:      broadcaster,
		Publisher:        publisher,
		BroadcastTimeout: cfg.BroadcastTimeout,
	}, logger, metrics)

	// Readiness tracks draining only; farmer directory health is on the
	// farmer_directory_up gauge.
	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, orch, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := orch.Drain(shutdownCtx); err != nil {
		logger.Warn("background broadcasts still running at shutdown", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("close error", "resource", c.name, "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newGeocoder returns nil when reverse geocoding is disabled; the pipeline
// then reports Unknown Location.
func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.Geocoder, error) {
	var inner domain.Geocoder
	switch cfg.GeocoderProvider {
	case config.GeocoderOpenCage:
		inner = opencage.NewClient(cfg.OpenCageAPIKey, cfg.ProviderTimeout, metrics, logger)
	case config.GeocoderGoogleMaps:
		client, err := googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.ProviderTimeout, metrics, logger)
		if err != nil {
			return nil, err
		}
		inner = client
	default:
		metrics.GeocodeEnabled.Set(0)
		logger.Info("reverse geocoding disabled")
		return nil, nil
	}

	metrics.GeocodeEnabled.Set(1)
	logger.Info("reverse geocoding enabled",
		"provider", cfg.GeocoderProvider,
		"cache_size", cfg.GeocodeCacheSize,
		"timeout", cfg.ProviderTimeout,
	)
	return opencage.NewCachedGeocoder(inner, cfg.GeocodeCacheSize, metrics), nil
}

// newBroadcaster wires the farmer directory and SMS gateway. Broadcasting is
// off unless both are configured.
func newBroadcaster(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger, closers *[]namedCloser) (*pipeline.Broadcaster, error) {
	if !cfg.SMSEnabled {
		logger.Info("sms broadcast disabled")
		return nil, nil
	}

	var directory domain.FarmerDirectory
	switch cfg.FarmerDirectory {
	case config.DirectoryPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		directory = postgres.NewFarmerDirectory(pool)
		*closers = append(*closers, namedCloser{"postgres pool", closerFunc(func() error {
			pool.Close()
			return nil
		})})
	case config.DirectoryFirestore:
		client, err := firestoredb.Connect(ctx, cfg.FirebaseCredentials)
		if err != nil {
			return nil, err
		}
		dir := firestoredb.NewFarmerDirectory(client)
		directory = dir
		*closers = append(*closers, namedCloser{"firestore client", dir})
	default:
		logger.Warn("sms enabled but no farmer directory configured, broadcast disabled")
		return nil, nil
	}

	metrics.FarmerDirectoryUp.Set(1)
	sender := textbee.NewClient(cfg.TextBeeAPIKey, cfg.TextBeeDeviceID, cfg.TextBeeBaseURL, cfg.ProviderTimeout, logger)
	logger.Info("sms broadcast enabled",
		"directory", cfg.FarmerDirectory,
		"concurrency", cfg.BroadcastConcurrency,
		"timeout", cfg.BroadcastTimeout,
	)
	return pipeline.NewBroadcaster(directory, sender, cfg.BroadcastConcurrency, logger, metrics), nil
}

type namedCloser struct {
	name string
	io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
