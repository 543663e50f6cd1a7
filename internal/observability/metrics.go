package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caravan",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caravan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reconcileCorrections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caravan",
			Subsystem: "reconcile",
			Name:      "corrections_total",
			Help:      "Reservations whose stored aggregates were corrected.",
		},
		[]string{"trigger", "legacy_priced"},
	)
	paymentsRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caravan",
			Subsystem: "payments",
			Name:      "registered_total",
			Help:      "Payments registered by kind.",
		},
		[]string{"kind", "method"},
	)
	paymentAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caravan",
			Subsystem: "payments",
			Name:      "amount_pesos_total",
			Help:      "Sum of registered payment amounts in pesos.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, reconcileCorrections, paymentsRegistered, paymentAmount)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordReconcile counts a reconciliation that wrote corrections.
func RecordReconcile(trigger string, legacyPriced bool) {
	RegisterMetrics()
	reconcileCorrections.WithLabelValues(trigger, strconv.FormatBool(legacyPriced)).Inc()
}

// RecordPayment counts a registered payment; kind is "reservation" or "package".
func RecordPayment(kind, method string, amount int64) {
	RegisterMetrics()
	paymentsRegistered.WithLabelValues(kind, method).Inc()
	paymentAmount.WithLabelValues(kind).Add(float64(amount))
}
