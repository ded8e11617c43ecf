package worker

import "github.com/prometheus/client_golang/prometheus"

var jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "runbox",
	Name:      "worker_jobs_total",
	Help:      "Number of processed job attempts by resulting job status",
}, []string{"status"})

func init() {
	prometheus.MustRegister(jobsTotal)
}
