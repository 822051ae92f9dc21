package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CaseTransition("submitted", "accepted")
	m.CaseTransition("submitted", "accepted")
	m.PaymentRecorded("payment", 2, 90, 0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.caseTransitions.WithLabelValues("submitted", "accepted")))
	require.Equal(t, 90.0, testutil.ToFloat64(m.allocatedAmount))
	require.Equal(t, 1.0, testutil.ToFloat64(m.paymentsRecorded.WithLabelValues("payment")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.CaseTransition("a", "b")
		m.TransitionRejected("accept", "invalid_state_transition")
		m.PaymentRecorded("expense", 0, 0, 10)
	})
}

func TestRegistryExposesDomainMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(reg)
	m.TransitionRejected("accept_case", "stale_state")

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, family := range families {
		byName[family.GetName()] = family
	}

	family, ok := byName["aligntrack_case_transition_rejections_total"]
	require.True(t, ok)
	require.Equal(t, dto.MetricType_COUNTER, family.GetType())
	require.Len(t, family.GetMetric(), 1)

	labels := map[string]string{}
	for _, pair := range family.GetMetric()[0].GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	require.Equal(t, map[string]string{"operation": "accept_case", "reason": "stale_state"}, labels)
	require.Equal(t, 1.0, family.GetMetric()[0].GetCounter().GetValue())
}
