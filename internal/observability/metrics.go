// Package observability holds the Prometheus collectors for roster activity.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Values of the transition label.
const (
	TransitionSignup     = "signup"
	TransitionUnregister = "unregister"
)

// Values of the outcome label.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

const (
	// UnknownActivity labels requests naming an activity that does not exist.
	UnknownActivity = "unknown"
)

var (
	transitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "roster",
		Name:      "transitions_total",
		Help:      "Signup and unregister attempts, labeled by activity and outcome.",
	}, []string{"transition", "activity", "outcome"})

	enrollmentGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mergington",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})

	capacityGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mergington",
		Subsystem: "roster",
		Name:      "max_participants",
		Help:      "Configured capacity per activity.",
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(transitionCounter, enrollmentGauge, capacityGauge)
}

// RecordTransition counts one signup or unregister attempt.
func RecordTransition(transition, activity, outcome string) {
	transitionCounter.WithLabelValues(transition, activity, outcome).Inc()
}

// RecordEnrollment publishes the roster size of an activity.
func RecordEnrollment(activity string, participants int) {
	enrollmentGauge.WithLabelValues(activity).Set(float64(participants))
}

// RecordCapacity publishes the capacity of an activity; called once per activity at startup.
func RecordCapacity(activity string, maxParticipants int) {
	capacityGauge.WithLabelValues(activity).Set(float64(maxParticipants))
}
