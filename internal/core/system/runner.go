package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order. Systems sharing a phase run in
// registration order. Each phase run is timed.
type Runner struct {
	systems []System
	sorted  bool

	last    [phaseCount]time.Duration
	observe func(Phase, time.Duration)
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// OnPhaseDone sets a hook called after every phase run with its duration.
func (r *Runner) OnPhaseDone(fn func(Phase, time.Duration)) {
	r.observe = fn
}

// TickPhase runs only the systems of the given phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	start := time.Now()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
	took := time.Since(start)
	if phase >= 0 && phase < phaseCount {
		r.last[phase] = took
	}
	if r.observe != nil {
		r.observe(phase, took)
	}
}

// LastDuration is how long the most recent run of phase took.
func (r *Runner) LastDuration(phase Phase) time.Duration {
	if phase < 0 || phase >= phaseCount {
		return 0
	}
	return r.last[phase]
}

// Count returns the number of systems registered for phase.
func (r *Runner) Count(phase Phase) int {
	n := 0
	for _, s := range r.systems {
		if s.Phase() == phase {
			n++
		}
	}
	return n
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
