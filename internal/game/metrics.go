package game

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/core/system"
)

// Metrics holds the simulation's Prometheus collectors.
type Metrics struct {
	tickDuration prometheus.Histogram
	phases       *prometheus.HistogramVec
	slowTicks    prometheus.Counter
	entities     prometheus.Gauge
	dayNumber    prometheus.Gauge
	events       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stn",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock time spent in one simulation tick.",
			Buckets:   []float64{.001, .0025, .005, .01, .02, .033, .05, .1, .25},
		}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stn",
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock time spent in one tick phase.",
			Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		}, []string{"phase"}),
		slowTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stn",
			Name:      "slow_ticks_total",
			Help:      "Ticks that exceeded the fixed tick budget.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stn",
			Name:      "entities",
			Help:      "Live entities after the last prune.",
		}),
		dayNumber: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stn",
			Name:      "day_number",
			Help:      "Current day of the running game.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stn",
			Name:      "events_total",
			Help:      "One-shot events broadcast to clients, by type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.tickDuration, m.phases, m.slowTicks, m.entities, m.dayNumber, m.events)
	return m
}

func (m *Metrics) observePhase(p system.Phase, took time.Duration) {
	if m == nil {
		return
	}
	m.phases.WithLabelValues(p.String()).Observe(took.Seconds())
}

func (m *Metrics) observeEvent(ev event.Event) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(ev.Type())).Inc()
}
