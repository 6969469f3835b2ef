package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle activity.
type OrderMetrics struct {
	transitions   *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
	expired       prometheus.Counter
	unitsReleased prometheus.Counter
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Applied order status transitions.",
		}, []string{"from", "to"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Orders placed, split by whether a deposit is required.",
		}, []string{"initial_status"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_expired_total",
			Help:      "Orders cancelled by the deposit-deadline sweep.",
		}),
		unitsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_units_released_total",
			Help:      "Stock units returned to the ledger by cancellations and expiries.",
		}),
	}
	reg.MustRegister(m.transitions, m.checkouts, m.expired, m.unitsReleased)
	return m
}

func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) IncCheckout(initialStatus string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(initialStatus)).Inc()
}

func (m *OrderMetrics) IncExpired() {
	if m == nil || m.expired == nil {
		return
	}
	m.expired.Inc()
}

func (m *OrderMetrics) AddUnitsReleased(units int) {
	if m == nil || m.unitsReleased == nil || units <= 0 {
		return
	}
	m.unitsReleased.Add(float64(units))
}
