package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, messagesStored) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	messagesStored = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "messages_stored",
			Help: "Rows in the messages table by label, refreshed periodically.",
		},
		[]string{"label"},
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func SetMessagesStored(safe, suspicious int) {
	messagesStored.WithLabelValues("safe").Set(float64(safe))
	messagesStored.WithLabelValues("suspicious").Set(float64(suspicious))
}
