package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medport"

// Metrics owns a private registry so tests can build as many as they like.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry        *prometheus.Registry
	evaluations     *prometheus.CounterVec
	invalidRules    prometheus.Counter
	notifications   *prometheus.CounterVec
	pollDuration    prometheus.Histogram
	reminderActions *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_evaluations_total",
			Help:      "Reminder due-checks by resulting state.",
		}, []string{"state"}),
		invalidRules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_rules_total",
			Help:      "Stored reminders whose schedule could not be built.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Due reminder notifications by outcome.",
		}, []string{"outcome"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of one background due poll.",
			Buckets:   prometheus.DefBuckets,
		}),
		reminderActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_actions_total",
			Help:      "Snooze and acknowledge writes.",
		}, []string{"action"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.evaluations,
		m.invalidRules,
		m.notifications,
		m.pollDuration,
		m.reminderActions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveEvaluation(state string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveInvalidRule() {
	if m == nil {
		return
	}
	m.invalidRules.Inc()
}

func (m *Metrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePoll(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pollDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveReminderAction(action string) {
	if m == nil {
		return
	}
	m.reminderActions.WithLabelValues(action).Inc()
}
