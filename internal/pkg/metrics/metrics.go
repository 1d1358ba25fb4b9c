package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the QR session and attendance flows, exposed on /metrics.
var (
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campustrack_qr_sessions_issued_total",
		Help: "QR sessions issued, by session type.",
	}, []string{"session_type"})

	SessionsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campustrack_qr_sessions_consumed_total",
		Help: "Successful QR session redemptions, by session type.",
	}, []string{"session_type"})

	SessionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campustrack_qr_sessions_rejected_total",
		Help: "Rejected QR session redemptions, by reason.",
	}, []string{"reason"})

	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campustrack_attendance_check_ins_total",
		Help: "Completed attendance check-ins.",
	})

	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campustrack_attendance_check_outs_total",
		Help: "Completed attendance check-outs.",
	})

	StatsRecomputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campustrack_stats_recompute_failures_total",
		Help: "Best-effort student statistics recomputes that failed.",
	})
)
