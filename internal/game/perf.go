package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/system"
)

// perfStats accumulates tick durations between two performance log lines.
type perfStats struct {
	durations []time.Duration
	lastLog   time.Time
}

func (s *Server) trackPerformance(took time.Duration, now time.Time) {
	budget := s.cfg.TickInterval()
	s.perf.durations = append(s.perf.durations, took)

	if s.metrics != nil {
		s.metrics.tickDuration.Observe(took.Seconds())
	}
	if took > budget {
		s.log.Warn("slow tick",
			zap.Duration("took", took),
			zap.Duration("budget", budget),
			zap.Duration("update", s.runner.LastDuration(system.PhaseUpdate)),
			zap.Duration("output", s.runner.LastDuration(system.PhaseOutput)))
		if s.metrics != nil {
			s.metrics.slowTicks.Inc()
		}
	}

	if s.perf.lastLog.IsZero() {
		s.perf.lastLog = now
		return
	}
	if now.Sub(s.perf.lastLog) <= s.cfg.PerformanceLogInterval {
		return
	}

	var total, longest time.Duration
	slow := 0
	for _, d := range s.perf.durations {
		total += d
		if d > longest {
			longest = d
		}
		if d > budget {
			slow++
		}
	}
	n := len(s.perf.durations)
	s.log.Info("performance stats",
		zap.Duration("avg", total/time.Duration(n)),
		zap.Duration("max", longest),
		zap.Int("entities", len(s.entities.Entities())),
		zap.Int("ticks", n),
		zap.Int("slow", slow),
		zap.Float64("slow_pct", float64(slow)*100/float64(n)),
	)
	s.perf.durations = s.perf.durations[:0]
	s.perf.lastLog = now
}
