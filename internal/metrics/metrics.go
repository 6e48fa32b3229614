package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_active_connections",
		Help: "Active websocket connections",
	})
	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_stored_total",
		Help: "Messages durably appended to the store",
	})
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_delivered_total",
		Help: "Message pushes written to live connections",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
