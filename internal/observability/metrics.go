package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "whw"

// Dashboard views, used as the "view" label of DashboardRequests.
const (
	ViewDashboard = "dashboard"
	ViewCases     = "cases"
	ViewFilters   = "filters"
	ViewExport    = "export"
	ViewPage      = "page"
)

// Metrics holds the Prometheus collectors for snapshot loading and the
// filter-and-aggregate path.
type Metrics struct {
	SnapshotRecords      prometheus.Gauge
	SnapshotReady        prometheus.Gauge
	SnapshotLoadDuration prometheus.Histogram
	SnapshotLoadErrors   prometheus.Counter

	DashboardRequests   *prometheus.CounterVec // labels: view
	FilterRejections    prometheus.Counter
	FilteredRecords     prometheus.Histogram
	AggregationDuration prometheus.Histogram
}

var (
	filteredBuckets    = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}
	aggregationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}
	loadBuckets        = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}
)

func newMetrics() *Metrics {
	return &Metrics{
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Number of case records in the loaded snapshot.",
		}),
		SnapshotReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_ready",
			Help:      "1 once the case snapshot has loaded, 0 before.",
		}),
		SnapshotLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_load_duration_seconds",
			Help:      "Time spent generating or reading the case snapshot.",
			Buckets:   loadBuckets,
		}),
		SnapshotLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_load_errors_total",
			Help:      "Failed attempts to load the case snapshot.",
		}),
		DashboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_requests_total",
			Help:      "Filter-and-aggregate passes by view.",
		}, []string{"view"}),
		FilterRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_rejections_total",
			Help:      "Requests rejected for a malformed filter specification.",
		}),
		FilteredRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_records",
			Help:      "Records remaining after filtering.",
			Buckets:   filteredBuckets,
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one filter-and-aggregate pass.",
			Buckets:   aggregationBuckets,
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SnapshotRecords,
		m.SnapshotReady,
		m.SnapshotLoadDuration,
		m.SnapshotLoadErrors,
		m.DashboardRequests,
		m.FilterRejections,
		m.FilteredRecords,
		m.AggregationDuration,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
