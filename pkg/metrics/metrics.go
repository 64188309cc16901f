// Package metrics prometheus collectors of the line server
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sockserver"

var (
	registerOnce sync.Once

	connectionsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "accepted_total",
			Help:      "Total accepted TCP connections.",
		},
		[]string{"engine"},
	)
	connectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "active",
			Help:      "Currently open TCP connections.",
		},
		[]string{"engine"},
	)
	framesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "frames_total",
			Help:      "Command frames by the handler that accepted them.",
		},
		[]string{"handler"},
	)
	negotiations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "negotiations_total",
			Help:      "Telnet negotiation commands stripped from client input.",
		},
	)
	overflows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decoder",
			Name:      "overflows_total",
			Help:      "Connections closed because the pending buffer exceeded the maximum frame size.",
		},
	)
	clients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "clients",
			Help:      "Clients in the registry.",
		},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(connectionsAccepted, connectionsActive, framesHandled, negotiations, overflows, clients)
	})
}

func ConnectionOpened(engine string) {
	Register()
	connectionsAccepted.WithLabelValues(engine).Inc()
	connectionsActive.WithLabelValues(engine).Inc()
}

func ConnectionClosed(engine string) {
	Register()
	connectionsActive.WithLabelValues(engine).Dec()
}

func FrameHandled(handler string) {
	Register()
	framesHandled.WithLabelValues(handler).Inc()
}

func NegotiationStripped() {
	Register()
	negotiations.Inc()
}

func DecoderOverflow() {
	Register()
	overflows.Inc()
}

func SetClients(n int) {
	Register()
	clients.Set(float64(n))
}
