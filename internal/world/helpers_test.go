package world

import (
	"time"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
	"go.uber.org/zap"
)

type testManagers struct {
	m      *Manager
	events []event.Event
}

func (t *testManagers) Entities() ecs.Queries         { return t.m }
func (t *testManagers) Broadcaster() ecs.Broadcaster  { return t }
func (t *testManagers) BroadcastEvent(ev event.Event) { t.events = append(t.events, ev) }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(opts ...Option) (*Manager, *testManagers) {
	m := NewManager(zap.NewNop(), opts...)
	gm := &testManagers{m: m}
	m.SetGameManagers(gm)
	m.SetMapSize(100, 100)
	return m, gm
}

// box adds an entity with a square footprint at (x, y).
func box(m *Manager, t ecs.Type, x, y, size float64) *ecs.Entity {
	e := ecs.New(m.GameManagers(), t)
	p := ext.NewPositionable(e).SetSize(size)
	p.SetPosition(geom.Vec(x, y))
	e.AddExtension(p)
	m.AddEntity(e)
	return e
}

func collidableBox(m *Manager, t ecs.Type, x, y, size float64) *ecs.Entity {
	e := box(m, t, x, y, size)
	e.AddExtension(ext.NewCollidable(e))
	return e
}
