// Package metrics exposes the Prometheus collectors this process increments.
// Label cardinality is bounded: update kinds, order statuses, and send
// outcomes are all closed sets.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal counts inbound Telegram updates by kind
	// (message, callback, photo, other).
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of Telegram updates processed.",
		},
		[]string{"kind"},
	)

	// OrdersTotal counts audit records appended by status.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Total number of order audit records appended.",
		},
		[]string{"status"},
	)

	// BroadcastSendsTotal counts broadcast deliveries by outcome (ok, failed).
	BroadcastSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_broadcast_sends_total",
			Help: "Total number of broadcast send attempts.",
		},
		[]string{"outcome"},
	)

	// HandlerPanicsTotal counts panics recovered at the top-level handler.
	HandlerPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_handler_panics_total",
			Help: "Total number of panics recovered while handling updates.",
		},
	)
)
