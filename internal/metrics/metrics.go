package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Payment network callbacks by network, method and outcome",
		},
		[]string{"network", "method", "outcome"},
	)

	ParkingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_events_total",
			Help: "ANPR camera events by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Completed settlements by order kind and network",
		},
		[]string{"kind", "network"},
	)
)

func init() {
	prometheus.MustRegister(
		CallbacksTotal,
		ParkingEventsTotal,
		SettlementsTotal,
	)
}
