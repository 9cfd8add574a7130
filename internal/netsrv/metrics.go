// Package netsrv implements spec component H: the interface that owns the
// reactor, accepts or dials connections, runs the handshake, and exposes
// the shared inbound queue applications drain. Grounded on
// NetLib/net2_connection.h's `basic_interface`/server/client split and on
// grpc-server.go's net.Listen + signal-driven shutdown pattern, re-cast per
// spec §5's concurrency model onto goroutines, channels and
// golang.org/x/sync/errgroup instead of an asio io_context.
package netsrv

import "github.com/prometheus/client_golang/prometheus"

var (
	connectionsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "trustcore",
		Subsystem: "netsrv",
		Name:      "connections",
		Help:      "Current authenticated connections per interface.",
	}, []string{"interface"})

	handshakeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trustcore",
		Subsystem: "netsrv",
		Name:      "handshake_failures_total",
		Help:      "Handshakes rejected, by interface.",
	}, []string{"interface"})

	inboundMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trustcore",
		Subsystem: "netsrv",
		Name:      "inbound_messages_total",
		Help:      "Packets delivered to an interface's inbound queue.",
	}, []string{"interface"})
)

func init() {
	prometheus.MustRegister(connectionsGauge, handshakeFailures, inboundMessages)
}
