package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "perfdash"

var (
	VendorFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_fetch_total",
		Help:      "Vendor series fetches by source and outcome (ok, degraded)",
	}, []string{"source", "status"})

	VendorFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vendor_fetch_duration_seconds",
		Help:      "Vendor series fetch duration in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	ReportBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_builds_total",
		Help:      "Report builds by outcome (ok, error)",
	}, []string{"outcome"})

	ReportBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_build_duration_seconds",
		Help:      "End to end report build duration in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})
)

func ObserveFetch(source, status string, d time.Duration) {
	VendorFetchTotal.WithLabelValues(source, status).Inc()
	VendorFetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func ObserveReport(err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ReportBuildsTotal.WithLabelValues(outcome).Inc()
	ReportBuildDuration.Observe(d.Seconds())
}
