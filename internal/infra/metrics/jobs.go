package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(updateJobsTotal) }

var updateJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "update_jobs_total",
		Help: "Update-handling jobs run by the worker pool, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

func IncUpdateJob(status string) {
	updateJobsTotal.WithLabelValues(norm(status)).Inc()
}
