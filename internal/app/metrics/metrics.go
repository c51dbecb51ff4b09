package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PaymentsInitiated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Total gateway payment sessions initiated",
		},
	)
	PaymentsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_settled_total",
			Help: "Total top-up settlements by outcome",
		},
		[]string{"outcome"}, // approved|rejected
	)
	PendingSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pending_topups_swept_total",
			Help: "Total stale pending top-ups rejected by the sweeper",
		},
	)
	CompensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_compensations_total",
			Help: "Total compensating ledger entries from order status changes",
		},
		[]string{"kind"}, // refund|rededuct
	)
)

// Handler for the /metrics endpoint
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(PaymentsInitiated)
	prometheus.MustRegister(PaymentsSettled)
	prometheus.MustRegister(PendingSwept)
	prometheus.MustRegister(CompensationsTotal)
}
