package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/middleware"
)

var (
	itemsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: middleware.MetricsNamespace,
			Name:      "items_stored",
			Help:      "Number of items currently held by the item store.",
		},
	)

	websocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: middleware.MetricsNamespace,
			Name:      "websocket_clients",
			Help:      "Number of connected item feed clients.",
		},
	)
)
