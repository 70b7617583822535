package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramMessagesSentTotal,
		telegramInputRejectedTotal,
		telegramUpdatesDroppedTotal,
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

	telegramMessagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_sent_total",
			Help: "Outgoing messages by result (ok, plain_fallback, error).",
		},
		[]string{"result"},
	)

	telegramInputRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_input_rejected_total",
			Help: "Messages rejected because they carried no text.",
		},
	)

	telegramUpdatesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_updates_dropped_total",
			Help: "Updates that could not be queued for processing.",
		},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncMessageSent(result string) {
	telegramMessagesSentTotal.WithLabelValues(norm(result)).Inc()
}

func IncInputRejected() {
	telegramInputRejectedTotal.Inc()
}

func IncUpdateDropped() {
	telegramUpdatesDroppedTotal.Inc()
}
