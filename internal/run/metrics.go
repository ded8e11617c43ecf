package run

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "runbox"

var (
	// 100ms -> 2m
	durationBuckets = []float64{0.1, 0.25, 0.5, 1, 1.5, 2, 3, 5, 8, 13, 21, 34, 60, 120}

	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "runs_total",
		Help:      "Number of finished runs by outcome",
	}, []string{"outcome", "error_class"})

	runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Histogram for the wall time from submit to result",
		Buckets:   durationBuckets,
	}, []string{"outcome"})

	runPolls = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_polls",
		Help:      "Histogram for the number of status fetches per run",
		Buckets:   prometheus.LinearBuckets(0, 2, 16),
	})

	runsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "runs_in_flight",
		Help:      "Number of runs currently submitting or polling",
	})
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration, runPolls, runsInFlight)
}

var _ Runner = &metricsRunner{}

type metricsRunner struct {
	Runner
}

// NewMetricsRunner wraps r so that every run is recorded in Prometheus.
func NewMetricsRunner(r Runner) Runner {
	return &metricsRunner{Runner: r}
}

func (m *metricsRunner) Run(ctx context.Context, req Request, obs Observer) Result {
	runsInFlight.Inc()
	defer runsInFlight.Dec()

	res := m.Runner.Run(ctx, req, obs)
	outcome := string(res.Outcome)
	runsTotal.WithLabelValues(outcome, string(res.ErrorClass)).Inc()
	runDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())
	runPolls.Observe(float64(res.Polls))
	return res
}
