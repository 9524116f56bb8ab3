package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizeRuns counts solver runs by algorithm and outcome
	OptimizeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_runs_total", Help: "Solver runs by algorithm and outcome."},
		[]string{"algorithm", "status"},
	)
	// OptimizeDuration tracks solver wall time in seconds
	OptimizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimize_duration_seconds", Help: "Solver wall time in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30}},
		[]string{"algorithm"},
	)
	// OptimizeEfficiency tracks reported efficiency percentages
	OptimizeEfficiency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimize_efficiency_percent", Help: "Efficiency versus baseline, percent.", Buckets: []float64{0, 5, 10, 20, 30, 50, 75, 100}},
		[]string{"algorithm"},
	)
	// ScheduleCoverage tracks scheduling coverage percentages
	ScheduleCoverage = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "schedule_coverage_percent", Help: "Share of work items placed per scheduling pass.", Buckets: []float64{25, 50, 75, 90, 95, 100}},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizeRuns)
		Registry.MustRegister(OptimizeDuration)
		Registry.MustRegister(OptimizeEfficiency)
		Registry.MustRegister(ScheduleCoverage)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
