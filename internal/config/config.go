package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Geocoder providers.
const (
	GeocoderOpenCage   = "opencage"
	GeocoderGoogleMaps = "googlemaps"
	GeocoderNone       = "none"
)

// Farmer directory backends.
const (
	DirectoryPostgres  = "postgres"
	DirectoryFirestore = "firestore"
	DirectoryNone      = "none"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Per-call upstream timeouts.
	ProviderTimeout time.Duration
	LLMTimeout      time.Duration

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// Reverse geocoding configuration.
	GeocoderProvider string
	OpenCageAPIKey   string
	GoogleMapsAPIKey string
	GeocodeCacheSize int

	// OpenAI-compatible chat completion endpoint.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// TextBee SMS gateway.
	SMSEnabled      bool
	TextBeeAPIKey   string
	TextBeeDeviceID string
	TextBeeBaseURL  string

	BroadcastConcurrency int
	BroadcastTimeout     time.Duration

	FarmerDirectory     string
	DatabaseURL         string
	FirebaseCredentials string // base64-encoded service account JSON

	// Optional hazard alert stream.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	llmTimeout, err := parseDuration("LLM_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	broadcastTimeout, err := parseDuration("BROADCAST_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}

	concurrency, err := strconv.Atoi(sharedcfg.EnvOrDefault("BROADCAST_CONCURRENCY", "4"))
	if err != nil || concurrency <= 0 {
		return nil, errors.New("invalid BROADCAST_CONCURRENCY")
	}

	textBeeKey := os.Getenv("TEXTBEE_API_KEY")
	textBeeDevice := os.Getenv("TEXTBEE_DEVICE_ID")
	smsEnabled := textBeeKey != "" && textBeeDevice != ""
	if v := os.Getenv("SMS_ENABLED"); v != "" {
		smsEnabled = v == "true"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	defaultDirectory := DirectoryNone
	if databaseURL != "" {
		defaultDirectory = DirectoryPostgres
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ProviderTimeout: providerTimeout,
		LLMTimeout:      llmTimeout,

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),

		GeocoderProvider: sharedcfg.EnvOrDefault("GEOCODER_PROVIDER", defaultGeocoder()),
		OpenCageAPIKey:   os.Getenv("OPENCAGE_API_KEY"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodeCacheSize: parseCacheSize(),

		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMModel:   sharedcfg.EnvOrDefault("LLM_MODEL", "gpt-4o-mini"),

		SMSEnabled:      smsEnabled,
		TextBeeAPIKey:   textBeeKey,
		TextBeeDeviceID: textBeeDevice,
		TextBeeBaseURL:  sharedcfg.EnvOrDefault("TEXTBEE_BASE_URL", "https://api.textbee.dev"),

		BroadcastConcurrency: concurrency,
		BroadcastTimeout:     broadcastTimeout,

		FarmerDirectory:     sharedcfg.EnvOrDefault("FARMER_DIRECTORY", defaultDirectory),
		DatabaseURL:         databaseURL,
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "hazard-alerts"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OpenWeatherAPIKey == "" {
		return errors.New("OPENWEATHER_API_KEY is required")
	}
	if c.LLMAPIKey == "" {
		return errors.New("LLM_API_KEY is required")
	}

	switch c.GeocoderProvider {
	case GeocoderOpenCage:
		if c.OpenCageAPIKey == "" {
			return errors.New("GEOCODER_PROVIDER is opencage but OPENCAGE_API_KEY is not set")
		}
	case GeocoderGoogleMaps:
		if c.GoogleMapsAPIKey == "" {
			return errors.New("GEOCODER_PROVIDER is googlemaps but GOOGLE_MAPS_API_KEY is not set")
		}
	case GeocoderNone:
	default:
		return fmt.Errorf("unknown GEOCODER_PROVIDER %q", c.GeocoderProvider)
	}

	if c.SMSEnabled && (c.TextBeeAPIKey == "" || c.TextBeeDeviceID == "") {
		return errors.New("SMS_ENABLED is true but TEXTBEE_API_KEY or TEXTBEE_DEVICE_ID is not set")
	}

	switch c.FarmerDirectory {
	case DirectoryPostgres:
		if c.DatabaseURL == "" {
			return errors.New("FARMER_DIRECTORY is postgres but DATABASE_URL is not set")
		}
	case DirectoryFirestore:
		if c.FirebaseCredentials == "" {
			return errors.New("FARMER_DIRECTORY is firestore but FIREBASE_CREDENTIALS is not set")
		}
	case DirectoryNone:
	default:
		return fmt.Errorf("unknown FARMER_DIRECTORY %q", c.FarmerDirectory)
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaAlertTopic == "" {
			return errors.New("KAFKA_ALERT_TOPIC is required")
		}
	}
	return nil
}

func defaultGeocoder() string {
	switch {
	case os.Getenv("OPENCAGE_API_KEY") != "":
		return GeocoderOpenCage
	case os.Getenv("GOOGLE_MAPS_API_KEY") != "":
		return GeocoderGoogleMaps
	default:
		return GeocoderNone
	}
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
