package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SimulatorMetrics contains Prometheus metrics for the device simulator.
type SimulatorMetrics struct {
	ReadingsPushed  prometheus.Counter
	PushFailures    *prometheus.CounterVec
	PollDuration    *prometheus.HistogramVec
	ActiveDevices   prometheus.Gauge
	RelayStateFlips prometheus.Counter
}

// NewSimulatorMetrics creates and registers simulator metrics.
func NewSimulatorMetrics(namespace string) *SimulatorMetrics {
	m := &SimulatorMetrics{
		ReadingsPushed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "simulator",
				Name:      "readings_pushed_total",
				Help:      "Total number of sensor readings pushed to the API",
			},
		),
		PushFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "simulator",
				Name:      "push_failures_total",
				Help:      "Total number of failed API calls",
			},
			[]string{"endpoint"},
		),
		PollDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "simulator",
				Name:      "poll_duration_seconds",
				Help:      "Duration of API poll round trips",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ActiveDevices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "simulator",
				Name:      "active_devices",
				Help:      "Number of simulated devices currently running",
			},
		),
		RelayStateFlips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "simulator",
				Name:      "relay_state_flips_total",
				Help:      "Total number of observed relay state changes",
			},
		),
	}

	MustRegister(
		m.ReadingsPushed,
		m.PushFailures,
		m.PollDuration,
		m.ActiveDevices,
		m.RelayStateFlips,
	)

	return m
}
