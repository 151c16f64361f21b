package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the reminder pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	webhookMessages   *prometheus.CounterVec
	llmRequests       *prometheus.CounterVec
	deliveries        *prometheus.CounterVec
	pollCycleDuration prometheus.Histogram
}

// MustNew constructs the collectors and registers them with reg.
// Registration errors panic, mirroring the promauto helpers.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		webhookMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memobot",
				Name:      "webhook_messages_total",
				Help:      "Inbound WhatsApp messages by handling outcome.",
			},
			[]string{"outcome"},
		),
		llmRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memobot",
				Name:      "llm_requests_total",
				Help:      "Language model calls by provider and result.",
			},
			[]string{"provider", "result"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "memobot",
				Name:      "reminder_deliveries_total",
				Help:      "Reminder delivery attempts by final status.",
			},
			[]string{"status"},
		),
		pollCycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "memobot",
				Name:      "poll_cycle_duration_seconds",
				Help:      "Time spent in one delivery poll cycle.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(m.webhookMessages, m.llmRequests, m.deliveries, m.pollCycleDuration)
	return m
}

// ObserveWebhook counts one inbound message with its outcome label.
func (m *Metrics) ObserveWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookMessages.WithLabelValues(outcome).Inc()
}

// ObserveLLMRequest counts one provider call.
func (m *Metrics) ObserveLLMRequest(provider, result string) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(provider, result).Inc()
}

// ObserveDelivery counts one delivery attempt with the status it left the reminder in.
func (m *Metrics) ObserveDelivery(status string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(status).Inc()
}

// ObservePollCycle records how long a poll cycle took.
func (m *Metrics) ObservePollCycle(d time.Duration) {
	if m == nil {
		return
	}
	m.pollCycleDuration.Observe(d.Seconds())
}
