package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gym_ledger"

// Metrics counts ledger operations. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MembersCreated     prometheus.Counter
	MembersDeactivated prometheus.Counter
	PaymentsRecorded   *prometheus.CounterVec // membership_type, period
	PaymentsRejected   *prometheus.CounterVec // reason
	FeesReconciled     prometheus.Counter
	Revenue            prometheus.Counter
}

// New creates and registers the ledger collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MembersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_created_total",
			Help:      "Members registered.",
		}),
		MembersDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_deactivated_total",
			Help:      "Members soft-deleted.",
		}),
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments written to the ledger.",
		}, []string{"membership_type", "period"}),
		PaymentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_rejected_total",
			Help:      "Payments refused by a ledger rule.",
		}, []string{"reason"}),
		FeesReconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_reconciled_total",
			Help:      "Member rows whose total fee was rewritten by reconciliation.",
		}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Sum of recorded payment amounts.",
		}),
	}

	reg.MustRegister(
		m.MembersCreated,
		m.MembersDeactivated,
		m.PaymentsRecorded,
		m.PaymentsRejected,
		m.FeesReconciled,
		m.Revenue,
	)
	return m
}

func (m *Metrics) MemberCreated() {
	if m == nil {
		return
	}
	m.MembersCreated.Inc()
}

func (m *Metrics) MemberDeactivated() {
	if m == nil {
		return
	}
	m.MembersDeactivated.Inc()
}

func (m *Metrics) PaymentRecorded(membershipType, period string, amount float64) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(membershipType, period).Inc()
	m.Revenue.Add(amount)
}

func (m *Metrics) PaymentRejected(reason string) {
	if m == nil {
		return
	}
	m.PaymentsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Reconciled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FeesReconciled.Add(float64(n))
}
