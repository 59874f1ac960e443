package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	LoansCreatedTotal     *prometheus.CounterVec
	PaymentsTotal         *prometheus.CounterVec
	PaymentAmountTotal    prometheus.Counter
	LoanStatusChanges     *prometheus.CounterVec
	ReportCacheLookups    *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agv_finance_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agv_finance_customers_created_total",
				Help: "Total number of customers registered.",
			},
		),
		LoansCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agv_finance_loans_created_total",
				Help: "Total number of loans disbursed, by loan type.",
			},
			[]string{"loan_type"},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agv_finance_payments_total",
				Help: "Payment attempts by outcome.",
			},
			[]string{"status"},
		),
		PaymentAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agv_finance_payment_amount_total",
				Help: "Sum of successfully recorded payment amounts.",
			},
		),
		LoanStatusChanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agv_finance_loan_status_changes_total",
				Help: "Loan status transitions applied by the refresh job and payments.",
			},
			[]string{"to"},
		),
		ReportCacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agv_finance_report_cache_lookups_total",
				Help: "Dashboard cache lookups by result.",
			},
			[]string{"result"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordLoanCreated(loanType string) {
	Business.LoansCreatedTotal.WithLabelValues(loanType).Inc()
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordPaymentAmount(amount float64) {
	Business.PaymentAmountTotal.Add(amount)
}

func RecordLoanStatusChange(to string, n int) {
	if n > 0 {
		Business.LoanStatusChanges.WithLabelValues(to).Add(float64(n))
	}
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	Business.ReportCacheLookups.WithLabelValues(result).Inc()
}
