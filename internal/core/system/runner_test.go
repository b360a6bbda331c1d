package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recordSystem) Phase() Phase { return s.phase }
func (s recordSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func tickAll(r *Runner, dt time.Duration) {
	for p := PhaseInput; p < phaseCount; p++ {
		r.TickPhase(p, dt)
	}
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordSystem{"broadcast", PhaseOutput, &log})
	r.Register(recordSystem{"cycle", PhasePostUpdate, &log})
	r.Register(recordSystem{"entities", PhaseUpdate, &log})
	r.Register(recordSystem{"gameover", PhasePostUpdate, &log})
	r.Register(recordSystem{"prune", PhaseCleanup, &log})

	tickAll(r, time.Millisecond)

	assert.Equal(t, []string{"entities", "cycle", "gameover", "prune", "broadcast"}, log)
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordSystem{"input", PhaseInput, &log})
	r.Register(recordSystem{"entities", PhaseUpdate, &log})

	r.TickPhase(PhaseInput, 0)

	assert.Equal(t, []string{"input"}, log)
}

type sleepSystem struct{ d time.Duration }

func (sleepSystem) Phase() Phase           { return PhaseUpdate }
func (s sleepSystem) Update(time.Duration) { time.Sleep(s.d) }

func TestRunnerTimesPhases(t *testing.T) {
	r := NewRunner()
	r.Register(sleepSystem{d: 5 * time.Millisecond})

	seen := map[Phase]time.Duration{}
	r.OnPhaseDone(func(p Phase, d time.Duration) { seen[p] = d })
	tickAll(r, 0)

	assert.Len(t, seen, 5)
	assert.GreaterOrEqual(t, seen[PhaseUpdate], 5*time.Millisecond)
	assert.Equal(t, seen[PhaseUpdate], r.LastDuration(PhaseUpdate))
	assert.Zero(t, r.LastDuration(Phase(42)))
	assert.Equal(t, 1, r.Count(PhaseUpdate))
	assert.Zero(t, r.Count(PhaseOutput))
}
