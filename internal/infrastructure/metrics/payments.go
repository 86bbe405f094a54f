package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment intent and payment session activity. A nil
// or unregistered value is a no-op.
type PaymentMetrics struct {
	intentsCreated *prometheus.CounterVec
	intentOutcomes *prometheus.CounterVec
	gatewayErrors  *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	polls          *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	intentsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intents_created_total",
		Help: "Payment intents created, by channel and purpose.",
	}, []string{"channel", "purpose"})
	intentOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intent_outcomes_total",
		Help: "Payment intents that reached a terminal status.",
	}, []string{"channel", "status"})
	gatewayErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_errors_total",
		Help: "Failed calls to payment providers.",
	}, []string{"channel", "operation"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_session_transitions_total",
		Help: "Payment session state changes, by target state.",
	}, []string{"state"})
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_session_polls_total",
		Help: "Status polls issued by payment sessions, by result.",
	}, []string{"result"})
	reg.MustRegister(intentsCreated, intentOutcomes, gatewayErrors, transitions, polls)
	return &PaymentMetrics{
		intentsCreated: intentsCreated,
		intentOutcomes: intentOutcomes,
		gatewayErrors:  gatewayErrors,
		transitions:    transitions,
		polls:          polls,
	}
}

func (m *PaymentMetrics) IncIntentCreated(channel, purpose string) {
	if m == nil || m.intentsCreated == nil {
		return
	}
	m.intentsCreated.WithLabelValues(normalizeLabel(channel), normalizeLabel(purpose)).Inc()
}

func (m *PaymentMetrics) IncIntentOutcome(channel, status string) {
	if m == nil || m.intentOutcomes == nil {
		return
	}
	m.intentOutcomes.WithLabelValues(normalizeLabel(channel), normalizeLabel(status)).Inc()
}

func (m *PaymentMetrics) IncGatewayError(channel, operation string) {
	if m == nil || m.gatewayErrors == nil {
		return
	}
	m.gatewayErrors.WithLabelValues(normalizeLabel(channel), normalizeLabel(operation)).Inc()
}

// ObserveTransition counts a session entering state.
func (m *PaymentMetrics) ObserveTransition(state string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(state)).Inc()
}

// ObservePoll counts one status poll result.
func (m *PaymentMetrics) ObservePoll(result string) {
	if m == nil || m.polls == nil {
		return
	}
	m.polls.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
