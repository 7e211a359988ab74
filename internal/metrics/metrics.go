package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PackagesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_packages_created_total",
			Help: "Number of session packages created",
		},
	)

	PaymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payments_recorded_total",
			Help: "Number of payments recorded, by method",
		},
		[]string{"method"},
	)

	PaymentAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payment_amount_total",
			Help: "Sum of recorded payment parts in the smallest currency unit",
		},
		[]string{"part"},
	)

	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_session_transitions_total",
			Help: "Number of session status transitions, by target status",
		},
		[]string{"status"},
	)

	PricingAdjustments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_pricing_adjustments_total",
			Help: "Number of session prices reconciled against the gross amount",
		},
	)

	LedgerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_ledger_errors_total",
			Help: "Number of failed ledger operations, by error code",
		},
		[]string{"operation", "code"},
	)

	PackagesDeactivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_packages_deactivated_total",
			Help: "Number of depleted packages deactivated by maintenance",
		},
	)

	IntegrityViolations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "billing_integrity_violations",
			Help: "Violations found by the last ledger integrity check",
		},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "billing_operation_duration_seconds",
			Help: "Time taken by ledger operations",
		},
		[]string{"operation"},
	)
)

func Register() {
	prometheus.MustRegister(
		PackagesCreated,
		PaymentsRecorded,
		PaymentAmount,
		SessionTransitions,
		PricingAdjustments,
		LedgerErrors,
		PackagesDeactivated,
		IntegrityViolations,
		OperationDuration,
	)
}
