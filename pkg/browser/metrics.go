package browser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veil",
		Name:      "browser_sessions_created_total",
		Help:      "Number of cloud browser sessions created.",
	})
	metricSessionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veil",
		Name:      "browser_sessions_closed_total",
		Help:      "Number of cloud browser sessions closed or evicted.",
	})
	metricCommands = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veil",
		Name:      "browser_commands_total",
		Help:      "Number of commands dispatched to cloud browser sessions.",
	})
	metricCommandFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veil",
		Name:      "browser_command_failures_total",
		Help:      "Number of dispatched commands that failed.",
	})
	metricPaymentRequired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "veil",
		Name:      "browser_payment_required_total",
		Help:      "Number of session creations rejected pending x402 payment.",
	})
)
