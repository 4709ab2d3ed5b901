package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of roster events successfully published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of roster event deliveries that failed and were re-queued.",
	})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "outbox",
		Name:      "events_dropped_total",
		Help:      "Number of roster events discarded because the outbox was full.",
	})

	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mergington",
		Subsystem: "outbox",
		Name:      "events_pending",
		Help:      "Number of roster events waiting for delivery.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mergington",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent encoding and delivering outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, droppedCounter, pendingGauge, batchDuration)
}
