package reservation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_allocation_seconds",
		Help:    "Time spent in the guarded allocation transaction.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	bookingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_attempts_total",
		Help: "Total booking attempts grouped by outcome.",
	}, []string{"result"})

	slotScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slot_scans_total",
		Help: "Candidate windows probed by the slot scanner.",
	})
)

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err)
}
