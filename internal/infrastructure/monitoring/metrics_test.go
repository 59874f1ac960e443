package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPayment(t *testing.T) {
	Business.PaymentsTotal.Reset()

	RecordPayment("success")
	RecordPayment("success")
	RecordPayment("failure_amount")

	assert.Equal(t, float64(2), testutil.ToFloat64(Business.PaymentsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Business.PaymentsTotal.WithLabelValues("failure_amount")))
}

func TestRecordLoanCreated(t *testing.T) {
	Business.LoansCreatedTotal.Reset()

	RecordLoanCreated("gold")

	assert.Equal(t, float64(1), testutil.ToFloat64(Business.LoansCreatedTotal.WithLabelValues("gold")))
}

func TestRecordLoanStatusChangeIgnoresZero(t *testing.T) {
	Business.LoanStatusChanges.Reset()

	RecordLoanStatusChange("overdue", 0)
	RecordLoanStatusChange("overdue", 3)

	assert.Equal(t, float64(3), testutil.ToFloat64(Business.LoanStatusChanges.WithLabelValues("overdue")))
}

func TestRecordCacheLookup(t *testing.T) {
	Business.ReportCacheLookups.Reset()

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(Business.ReportCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(Business.ReportCacheLookups.WithLabelValues("miss")))
}

func TestRecordDBQuery(t *testing.T) {
	DB.QueryDuration.Reset()

	RecordDBQuery("GetLoanByID", "success", 10*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(DB.QueryDuration))
}
