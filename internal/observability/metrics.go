package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farm_advisory"

// Metrics holds the Prometheus counters, histograms, and gauges for the advisory service.
type Metrics struct {
	AdvisoryRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,invalid,failed}
	StageDuration    *prometheus.HistogramVec // labels: stage={locate,weather,advisory,translate,broadcast}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: provider, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec
	GeocodeEnabled     prometheus.Gauge

	// Text model metrics.
	ModelCalls *prometheus.CounterVec // labels: purpose={advisory,translation}, outcome={success,error,fallback}

	// Alerting metrics.
	HazardAlerts         *prometheus.CounterVec // labels: kind
	SMSSends             *prometheus.CounterVec // labels: outcome={sent,failed}
	BroadcastsInFlight   prometheus.Gauge
	AlertEventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	FarmerDirectoryUp    prometheus.Gauge       // 1 after a successful farmer lookup, 0 after a failed one
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AdvisoryRequests,
		m.StageDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.ModelCalls,
		m.HazardAlerts,
		m.SMSSends,
		m.BroadcastsInFlight,
		m.AlertEventsPublished,
		m.FarmerDirectoryUp,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AdvisoryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_requests_total",
			Help:      "Advisory requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each advisory pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding is enabled, 0 otherwise.",
		}),
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Text model calls by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		HazardAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hazard_alerts_total",
			Help:      "Hazard alerts detected by kind.",
		}, []string{"kind"}),
		SMSSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_sends_total",
			Help:      "SMS send attempts by outcome.",
		}, []string{"outcome"}),
		BroadcastsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "broadcasts_in_flight",
			Help:      "Alert broadcasts currently running in the background.",
		}),
		AlertEventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_events_published_total",
			Help:      "Hazard alert events published to Kafka by outcome.",
		}, []string{"outcome"}),
		FarmerDirectoryUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "farmer_directory_up",
			Help:      "1 when the last registered-farmer lookup succeeded, 0 when it failed.",
		}),
	}
}
