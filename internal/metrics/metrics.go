// Package metrics contains the Prometheus collectors of dhcpudp and the HTTP
// server exposing them.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/AdguardTeam/dhcpudp/internal/dhcplog"
	"github.com/AdguardTeam/dhcpudp/internal/udpsock"
	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the default namespace of the collectors.
const Namespace = "dhcpudp"

// Packets is the Prometheus-based implementation of [udpsock.Metrics].
type Packets struct {
	received   prometheus.Counter
	dropped    *prometheus.CounterVec
	dispatched prometheus.Counter
	dispatch   prometheus.Histogram
	sent       prometheus.Counter
	sendErrors prometheus.Counter
}

// type check
var _ udpsock.Metrics = (*Packets)(nil)

// NewPackets registers the packet collectors in reg under namespace and
// returns the metrics using them.
func NewPackets(namespace string, reg prometheus.Registerer) (m *Packets, err error) {
	m = &Packets{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "received_total",
			Namespace: namespace,
			Help:      "The total number of datagrams received on the server port.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "dropped_total",
			Namespace: namespace,
			Help:      "The total number of datagrams dropped before processing by reason.",
		}, []string{"reason"}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "dispatched_total",
			Namespace: namespace,
			Help:      "The total number of datagrams passed to the processor.",
		}),
		dispatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:      "dispatch_duration_seconds",
			Namespace: namespace,
			Help:      "The time the processor takes to handle a datagram.",
			// From 0.1 ms to about 3 seconds.
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "sent_total",
			Namespace: namespace,
			Help:      "The total number of datagrams sent from the server port.",
		}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "send_errors_total",
			Namespace: namespace,
			Help:      "The total number of failed send attempts.",
		}),
	}

	collectors := []prometheus.Collector{
		m.received,
		m.dropped,
		m.dispatched,
		m.dispatch,
		m.sent,
		m.sendErrors,
	}

	for _, c := range collectors {
		err = reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("registering packet metrics: %w", err)
		}
	}

	return m, nil
}

// IncrementReceived implements the [udpsock.Metrics] interface for *Packets.
func (m *Packets) IncrementReceived(_ context.Context) {
	m.received.Inc()
}

// IncrementDropped implements the [udpsock.Metrics] interface for *Packets.
func (m *Packets) IncrementDropped(_ context.Context, reason udpsock.DropReason) {
	m.dropped.WithLabelValues(string(reason)).Inc()
}

// ObserveDispatch implements the [udpsock.Metrics] interface for *Packets.
func (m *Packets) ObserveDispatch(_ context.Context, dur time.Duration) {
	m.dispatched.Inc()
	m.dispatch.Observe(dur.Seconds())
}

// IncrementSent implements the [udpsock.Metrics] interface for *Packets.
func (m *Packets) IncrementSent(_ context.Context, err error) {
	if err != nil {
		m.sendErrors.Inc()

		return
	}

	m.sent.Inc()
}

// Messages is the Prometheus-based implementation of [dhcplog.Metrics].
type Messages struct {
	messages  *prometheus.CounterVec
	malformed prometheus.Counter
}

// type check
var _ dhcplog.Metrics = (*Messages)(nil)

// NewMessages registers the message collectors in reg under namespace and
// returns the metrics using them.
func NewMessages(namespace string, reg prometheus.Registerer) (m *Messages, err error) {
	m = &Messages{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "messages_total",
			Namespace: namespace,
			Help:      "The total number of valid DHCPv4 messages by type.",
		}, []string{"type"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "malformed_total",
			Namespace: namespace,
			Help:      "The total number of payloads that aren't valid DHCPv4 messages.",
		}),
	}

	for _, c := range []prometheus.Collector{m.messages, m.malformed} {
		err = reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("registering message metrics: %w", err)
		}
	}

	return m, nil
}

// IncrementMessages implements the [dhcplog.Metrics] interface for *Messages.
func (m *Messages) IncrementMessages(_ context.Context, typ dhcpv4.MessageType) {
	m.messages.WithLabelValues(typ.String()).Inc()
}

// IncrementMalformed implements the [dhcplog.Metrics] interface for *Messages.
func (m *Messages) IncrementMalformed(_ context.Context) {
	m.malformed.Inc()
}
