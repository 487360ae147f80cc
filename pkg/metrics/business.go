package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics tracks order lifecycle events.
type OrderMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	invoices    *prometheus.CounterVec
}

// NewOrderMetrics registers order counters on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total orders created.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"to"})
	invoices := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoices_rendered_total",
		Help: "Invoice PDF renders by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(created, transitions, invoices)
	return &OrderMetrics{created: created, transitions: transitions, invoices: invoices}
}

// IncCreated counts a newly created order.
func (o *OrderMetrics) IncCreated() {
	if o == nil || o.created == nil {
		return
	}
	o.created.Inc()
}

// IncTransition counts a status transition into the target status.
func (o *OrderMetrics) IncTransition(to string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncInvoiceRender counts an invoice render attempt by outcome.
func (o *OrderMetrics) IncInvoiceRender(outcome string) {
	if o == nil || o.invoices == nil {
		return
	}
	o.invoices.WithLabelValues(normalizeLabel(outcome)).Inc()
}
