package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		alertAdminsRegistered,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	alertAdminsRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_admins_registered",
			Help: "Number of chat ids currently registered for alerts.",
		},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func SetAlertAdmins(n int) {
	alertAdminsRegistered.Set(float64(n))
}
