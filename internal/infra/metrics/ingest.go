package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(ingestStepsTotal, adminAlertsTotal) }

var (
	ingestStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_steps_total",
			Help: "Outcome of each message ingest step.",
		},
		[]string{"step", "outcome"}, // step: typing|persist|reply|alert; outcome: ok|failed
	)

	adminAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_alerts_total",
			Help: "Alerts delivered to registered admins, by status.",
		},
		[]string{"status"}, // 'sent', 'failed'
	)
)

func IncIngestStep(step string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	ingestStepsTotal.WithLabelValues(norm(step), outcome).Inc()
}

func IncAdminAlert(status string) {
	adminAlertsTotal.WithLabelValues(norm(status)).Inc()
}
