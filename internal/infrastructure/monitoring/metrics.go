package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomerLifecycleTotal *prometheus.CounterVec
	IntegrityRiskTotal     *prometheus.CounterVec
	OrphanedIdentities     prometheus.Gauge
	CacheLookupsTotal      *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_service_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomerLifecycleTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_customer_lifecycle_total",
				Help: "Customer lifecycle transitions by action.",
			},
			[]string{"action"},
		),
		IntegrityRiskTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_integrity_risk_events_total",
				Help: "Events that may leave an identity record without its account record.",
			},
			[]string{"source"},
		),
		OrphanedIdentities: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_orphaned_identities",
				Help: "Identity records without an account record found by the last integrity audit.",
			},
		),
		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_cache_lookups_total",
				Help: "Customer cache lookups by result.",
			},
			[]string{"result"},
		),
	}
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

func RecordDBQuery(queryName string, err error, duration time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCustomerLifecycle(action string) {
	Business.CustomerLifecycleTotal.WithLabelValues(action).Inc()
}

func RecordIntegrityRisk(source string) {
	Business.IntegrityRiskTotal.WithLabelValues(source).Inc()
}

func SetOrphanedIdentities(count int) {
	Business.OrphanedIdentities.Set(float64(count))
}

func RecordCacheLookup(hit bool) {
	if hit {
		Business.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	Business.CacheLookupsTotal.WithLabelValues("miss").Inc()
}
