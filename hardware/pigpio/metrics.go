package pigpio

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for a Client. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Reconnects      prometheus.Counter
	Events          prometheus.Counter
	ListenerPanics  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pigpio",
				Subsystem: "client",
				Name:      "commands_total",
				Help:      "Commands sent to the daemon by command and result (ok, error, transport)",
			},
			[]string{"command", "result"},
		),

		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pigpio",
				Subsystem: "client",
				Name:      "command_duration_seconds",
				Help:      "Round trip time of daemon commands in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
			},
			[]string{"command"},
		),

		Reconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pigpio",
				Subsystem: "monitor",
				Name:      "reconnects_total",
				Help:      "Notification sessions re-established after a failure",
			},
		),

		Events: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pigpio",
				Subsystem: "monitor",
				Name:      "events_total",
				Help:      "State change events dispatched to listeners",
			},
		),

		ListenerPanics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pigpio",
				Subsystem: "monitor",
				Name:      "listener_panics_total",
				Help:      "Listener invocations that panicked",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Commands, m.CommandDuration, m.Reconnects, m.Events, m.ListenerPanics)
	}

	return m
}

func (m *Metrics) observeCommand(cmd Command, result string, took time.Duration) {
	if m == nil {
		return
	}

	m.Commands.WithLabelValues(cmd.String(), result).Inc()
	m.CommandDuration.WithLabelValues(cmd.String()).Observe(took.Seconds())
}

func (m *Metrics) reconnected() {
	if m == nil {
		return
	}

	m.Reconnects.Inc()
}

func (m *Metrics) dispatched() {
	if m == nil {
		return
	}

	m.Events.Inc()
}

func (m *Metrics) listenerPanicked() {
	if m == nil {
		return
	}

	m.ListenerPanics.Inc()
}
