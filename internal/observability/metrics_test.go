package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterMetrics()
		RegisterMetrics()
	})
	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)
}

func TestRecordReconcileCounts(t *testing.T) {
	before := testutil.ToFloat64(reconcileCorrections.WithLabelValues("sweep", "true"))
	RecordReconcile("sweep", true)
	assert.Equal(t, before+1, testutil.ToFloat64(reconcileCorrections.WithLabelValues("sweep", "true")))
}

func TestRecordPaymentAddsAmount(t *testing.T) {
	before := testutil.ToFloat64(paymentAmount.WithLabelValues("package"))
	RecordPayment("package", "efectivo", 450)
	assert.Equal(t, before+450, testutil.ToFloat64(paymentAmount.WithLabelValues("package")))
}
