package game

import (
	"time"

	"github.com/survivethenight/server/internal/core/system"
)

// entityUpdateSystem runs every entity's extension updates. Phase 1 (Update).
type entityUpdateSystem struct{ s *Server }

func (*entityUpdateSystem) Phase() system.Phase { return system.PhaseUpdate }

func (u *entityUpdateSystem) Update(dt time.Duration) {
	u.s.entities.Update(dt.Seconds())
}

// cycleSystem advances the day/night countdown. Phase 2 (PostUpdate).
type cycleSystem struct{ s *Server }

func (*cycleSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (c *cycleSystem) Update(dt time.Duration) {
	c.s.handleDayNightCycle(dt.Seconds())
}

// gameOverSystem ends the game when every player is dead. Phase 2
// (PostUpdate), registered after the cycle.
type gameOverSystem struct{ s *Server }

func (*gameOverSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (g *gameOverSystem) Update(time.Duration) {
	g.s.handleIfGameOver()
}

// pruneSystem applies expired removals. Phase 3 (Cleanup).
type pruneSystem struct{ s *Server }

func (*pruneSystem) Phase() system.Phase { return system.PhaseCleanup }

func (p *pruneSystem) Update(time.Duration) {
	p.s.entities.PruneEntities()
	if p.s.metrics != nil {
		p.s.metrics.entities.Set(float64(len(p.s.entities.Entities())))
	}
}

// broadcastSystem delivers the tick's events and then the game state.
// Phase 4 (Output).
type broadcastSystem struct{ s *Server }

func (*broadcastSystem) Phase() system.Phase { return system.PhaseOutput }

func (b *broadcastSystem) Update(time.Duration) {
	b.s.bus.Flush()
	snap := b.s.snapshot(b.s.entities.StateTracker().Drain())
	b.s.deliver(snap)
}
