package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for chat turns and the
// qualified-lead notification.
type ConversationMetrics struct {
	turnsTotal       *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	turnLatency      prometheus.Histogram
	responderTotal   *prometheus.CounterVec
	notifyTotal      *prometheus.CounterVec
	persistErrors    *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Chat turns processed, by resulting lead status",
		}, []string{"status"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "transitions_total",
			Help:      "Lead status changes between consecutive turns",
		}, []string{"from", "to"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "turn_seconds",
			Help:      "Time to process one chat turn",
			Buckets:   prometheus.DefBuckets,
		}),
		responderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "responder_total",
			Help:      "Reply source per turn (generated, fallback, deterministic)",
		}, []string{"outcome"}),
		notifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Name:      "notify_total",
			Help:      "Qualified-lead notifications by outcome",
		}, []string{"outcome"}),
		persistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadbot",
			Subsystem: "conversation",
			Name:      "persist_errors_total",
			Help:      "Conversation store failures by operation",
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.transitionsTotal, m.turnLatency, m.responderTotal, m.notifyTotal, m.persistErrors)
	return m
}

func (m *ConversationMetrics) ObserveTurn(status string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.turnLatency.Observe(seconds)
}

// ObserveTransition counts a status change. Unchanged statuses are ignored.
func (m *ConversationMetrics) ObserveTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *ConversationMetrics) ObserveResponder(outcome string) {
	if m == nil {
		return
	}
	m.responderTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveNotify(outcome string) {
	if m == nil {
		return
	}
	m.notifyTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObservePersistError(op string) {
	if m == nil {
		return
	}
	m.persistErrors.WithLabelValues(op).Inc()
}
