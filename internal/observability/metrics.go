package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the domain counters. A nil *Metrics is valid and records
// nothing, so services can be constructed in tests without a registry.
type Metrics struct {
	caseTransitions   *prometheus.CounterVec
	transitionErrors  *prometheus.CounterVec
	paymentsRecorded  *prometheus.CounterVec
	allocatedAmount   prometheus.Counter
	unallocatedAmount prometheus.Counter
	allocationsPerPay prometheus.Histogram
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		caseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aligntrack",
			Name:      "case_transitions_total",
			Help:      "Case status transitions applied, by source and target status.",
		}, []string{"from", "to"}),
		transitionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aligntrack",
			Name:      "case_transition_rejections_total",
			Help:      "Rejected case operations, by operation and reason.",
		}, []string{"operation", "reason"}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aligntrack",
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, by type.",
		}, []string{"type"}),
		allocatedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aligntrack",
			Name:      "allocated_amount_total",
			Help:      "Sum of amounts allocated to case balances.",
		}),
		unallocatedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aligntrack",
			Name:      "unallocated_amount_total",
			Help:      "Sum of payment amounts kept as doctor credit.",
		}),
		allocationsPerPay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aligntrack",
			Name:      "allocations_per_payment",
			Help:      "Number of allocation rows written per payment.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.caseTransitions,
			m.transitionErrors,
			m.paymentsRecorded,
			m.allocatedAmount,
			m.unallocatedAmount,
			m.allocationsPerPay,
		)
	}
	return m
}

func (m *Metrics) CaseTransition(from, to string) {
	if m == nil {
		return
	}
	m.caseTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) TransitionRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.transitionErrors.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) PaymentRecorded(paymentType string, allocations int, allocated, unallocated float64) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(paymentType).Inc()
	m.allocationsPerPay.Observe(float64(allocations))
	if allocated > 0 {
		m.allocatedAmount.Add(allocated)
	}
	if unallocated > 0 {
		m.unallocatedAmount.Add(unallocated)
	}
}
