package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		telegramUpdatesReceivedTotal,
		telegramCommandsDispatchedTotal,
		telegramAPIRequestsTotal,
		telegramAPIRequestDurationMs,
	)
}

var (
	telegramUpdatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Inbound updates by intake result.",
		},
		[]string{"result"}, // 'accepted', 'decode_error', 'unauthorized', 'queue_full', 'too_large', 'read_error'
	)

	telegramCommandsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_dispatched_total",
			Help: "Routed inbound texts by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	telegramAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_requests_total",
			Help: "Outbound Bot API calls by method and outcome.",
		},
		[]string{"method", "outcome"}, // 'ok', 'not_ok', 'failed'
	)

	telegramAPIRequestDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_api_request_duration_ms",
			Help:    "Outbound Bot API call latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"method", "success"},
	)
)

func IncUpdate(result string) {
	telegramUpdatesReceivedTotal.WithLabelValues(norm(result)).Inc()
}

// IncCommand records a routed text. Rejected and plain texts carry no
// command label so remote input cannot grow label cardinality.
func IncCommand(command, outcome string) {
	telegramCommandsDispatchedTotal.WithLabelValues(norm(command), norm(outcome)).Inc()
}

func ObserveAPIRequest(method, outcome string, latencyMs int64) {
	telegramAPIRequestsTotal.WithLabelValues(method, norm(outcome)).Inc()
	telegramAPIRequestDurationMs.WithLabelValues(method, strconv.FormatBool(outcome != "failed")).
		Observe(float64(latencyMs))
}
