package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
	"github.com/survivethenight/server/internal/world"
)

type sim struct {
	m      *world.Manager
	now    time.Time
	events []event.Event
}

func (s *sim) Entities() ecs.Queries         { return s.m }
func (s *sim) Broadcaster() ecs.Broadcaster  { return s }
func (s *sim) BroadcastEvent(ev event.Event) { s.events = append(s.events, ev) }

func newSim(t *testing.T) *sim {
	t.Helper()
	tbl, err := data.DefaultEntityTable()
	require.NoError(t, err)

	s := &sim{now: time.Unix(1_700_000_000, 0)}
	s.m = world.NewManager(zap.NewNop(), world.WithClock(func() time.Time { return s.now }))
	s.m.SetGameManagers(s)
	s.m.SetMapSize(256, 256)
	Register(s.m, tbl, zap.NewNop())
	return s
}

func (s *sim) spawn(t *testing.T, typ ecs.Type, x, y float64) *ecs.Entity {
	t.Helper()
	e := s.m.CreateEntity(typ)
	require.NotNil(t, e)
	ecs.Get[*ext.Positionable](e).SetPosition(geom.Vec(x, y))
	s.m.AddEntity(e)
	return e
}

func (s *sim) tick(dt float64) {
	s.m.Update(dt)
	s.m.PruneEntities()
}

func (s *sim) advance(d time.Duration) { s.now = s.now.Add(d) }

func (s *sim) eventsOf(t event.Type) []event.Event {
	var out []event.Event
	for _, ev := range s.events {
		if ev.Type() == t {
			out = append(out, ev)
		}
	}
	return out
}

func (s *sim) count(t ecs.Type) int {
	n := 0
	for _, e := range s.m.Entities() {
		if e.Type() == t {
			n++
		}
	}
	return n
}

func position(e *ecs.Entity) geom.Vector2 {
	return ecs.Get[*ext.Positionable](e).Position()
}

func health(e *ecs.Entity) float64 {
	return ecs.Get[*ext.Destructible](e).Health()
}
