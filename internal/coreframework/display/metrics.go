package display

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "coreframework"
	metricsSubsystem = "startup_display"
)

// Metrics records orchestrator activity.
type Metrics struct {
	Triggers *prometheus.CounterVec
	Absorbed *prometheus.CounterVec
	Displays prometheus.Counter
	Fatal    prometheus.Counter
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "triggers_total",
			Help:      "Display triggers received, by source.",
		}, []string{"source"}),
		Absorbed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "triggers_absorbed_total",
			Help:      "Display triggers ignored because the report was already shown, by source.",
		}, []string{"source"}),
		Displays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "flushes_total",
			Help:      "Startup reports flushed to the sink.",
		}),
		Fatal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fatal_errors_total",
			Help:      "Reports abandoned because a line could not be laid out.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent preparing and flushing the startup report.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Triggers, m.Absorbed, m.Displays, m.Fatal, m.Duration)
	}
	return m
}

func (m *Metrics) observe(start time.Time, success bool) {
	m.Duration.Observe(time.Since(start).Seconds())
	if success {
		m.Displays.Inc()
	} else {
		m.Fatal.Inc()
	}
}
