package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ward_engine"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Intake pipeline metrics.
	ReportsConsumed prometheus.Counter
	ReportsRejected *prometheus.CounterVec // labels: reason={missing_coordinates,invalid_coordinates,invalid_severity,malformed}
	TicketsProduced *prometheus.CounterVec // labels: priority={Critical,High,Medium,Low}
	TicketsUnrouted prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Ward resolution and density metrics.
	WardsLoaded          prometheus.Gauge
	WardResolutions      *prometheus.CounterVec // labels: method={bbox,nearest,none}
	HotspotQueryDuration prometheus.Histogram
	HotspotsFound        prometheus.Gauge
	HotspotCache         *prometheus.CounterVec // labels: result={hit,miss,error}
	PriorityScore        prometheus.Histogram
	ReportSnapshotErrors prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_consumed_total",
			Help:      "Citizen reports read from the source topic.",
		}),
		ReportsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rejected_total",
			Help:      "Reports rejected before enrichment, by reason.",
		}, []string{"reason"}),
		TicketsProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_produced_total",
			Help:      "Enriched tickets written to the sink topic, by priority level.",
		}, []string{"priority"}),
		TicketsUnrouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_unrouted_total",
			Help:      "Loaded tickets that resolved to no ward.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the intake pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-enrich-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		WardsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wards_loaded",
			Help:      "Number of regions in the ward lookup table.",
		}),
		WardResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ward_resolutions_total",
			Help:      "Ward resolutions by method.",
		}, []string{"method"}),
		HotspotQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hotspot_query_duration_seconds",
			Help:      "Duration of hotspot detection including the report snapshot.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		HotspotsFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hotspots_found",
			Help:      "Number of hotspots returned by the most recent query.",
		}),
		HotspotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hotspot_cache_total",
			Help:      "Hotspot cache lookups by result.",
		}, []string{"result"}),
		PriorityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "priority_score",
			Help:      "Final priority scores assigned to locations.",
			Buckets:   []float64{0.5, 0.65, 0.7, 0.8, 0.85, 0.95, 1},
		}),
		ReportSnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_snapshot_errors_total",
			Help:      "Failures reading the open-report snapshot.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when area name enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ReportsConsumed,
		m.ReportsRejected,
		m.TicketsProduced,
		m.TicketsUnrouted,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.WardsLoaded,
		m.WardResolutions,
		m.HotspotQueryDuration,
		m.HotspotsFound,
		m.HotspotCache,
		m.PriorityScore,
		m.ReportSnapshotErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
