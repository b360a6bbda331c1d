package replica

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/entities"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/game"
	"github.com/survivethenight/server/internal/geom"
	"github.com/survivethenight/server/internal/world"
)

type handle struct{ m *world.Manager }

func (h handle) Entities() ecs.Queries        { return h.m }
func (h handle) Broadcaster() ecs.Broadcaster { return h }
func (handle) BroadcastEvent(event.Event)     {}

// serverWorld builds authoritative entities to produce realistic records.
func serverWorld(t *testing.T) *world.Manager {
	t.Helper()
	tbl, err := data.DefaultEntityTable()
	require.NoError(t, err)
	m := world.NewManager(zap.NewNop())
	m.SetGameManagers(handle{m: m})
	entities.Register(m, tbl, zap.NewNop())
	m.SetMapSize(512, 512)
	return m
}

func spawn(m *world.Manager, typ ecs.Type, pos geom.Vector2) *ecs.Entity {
	e := m.CreateEntity(typ)
	ecs.Get[*ext.Positionable](e).SetPosition(pos)
	m.AddEntity(e)
	return e
}

// wire encodes ev the way the transport does and returns the frame bytes.
func wire(t *testing.T, ev event.Event) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"type": ev.Type(), "payload": ev.Payload()})
	require.NoError(t, err)
	return data
}

func snapshotOf(m *world.Manager, removed ...string) game.Snapshot {
	snap := game.Snapshot{DayNumber: 2, UntilNextCycle: 42, IsDay: false, RemovedEntityIDs: removed}
	for _, e := range m.Entities() {
		snap.Entities = append(snap.Entities, e.Serialize())
	}
	return snap
}

func TestSnapshotCreatesAndUpdatesEntities(t *testing.T) {
	m := serverWorld(t)
	p := spawn(m, ecs.TypePlayer, geom.Vec(10, 20))
	z := spawn(m, ecs.TypeZombie, geom.Vec(100, 100))

	s := New(zap.NewNop())
	require.NoError(t, s.HandleFrame(wire(t, event.YourID{PlayerID: p.ID()})))
	require.NoError(t, s.HandleFrame(wire(t, snapshotOf(m))))

	require.Len(t, s.Entities(), 2)
	assert.Equal(t, p.ID(), s.Player().ID())
	assert.Equal(t, ecs.TypeZombie, s.Entity(z.ID()).Type())
	assert.True(t, ecs.Has[*entities.Player](s.Player()))
	assert.Equal(t, geom.Vec(10, 20), ecs.Get[*ext.Positionable](s.Player()).Position())
	assert.Equal(t, 2, s.DayNumber)
	assert.Equal(t, 42.0, s.UntilNextCycle)
	assert.False(t, s.IsDay)

	before := s.Entity(z.ID())
	ecs.Get[*ext.Positionable](z).SetPosition(geom.Vec(90, 100))
	ecs.Get[*ext.Destructible](z).Damage(1)
	require.NoError(t, s.HandleFrame(wire(t, snapshotOf(m))))

	after := s.Entity(z.ID())
	assert.Same(t, before, after, "existing entities are reconciled in place")
	assert.Equal(t, geom.Vec(90, 100), ecs.Get[*ext.Positionable](after).Position())
	assert.Equal(t, 2.0, ecs.Get[*ext.Destructible](after).Health())
}

func TestSnapshotRemovesListedIDs(t *testing.T) {
	m := serverWorld(t)
	p := spawn(m, ecs.TypePlayer, geom.Vec(0, 0))
	tree := spawn(m, ecs.TypeTree, geom.Vec(50, 50))

	s := New(zap.NewNop())
	s.ApplySnapshot(snapshotOf(m))
	require.Len(t, s.Entities(), 2)

	m.MarkEntityForRemoval(tree, 0)
	m.PruneEntities()
	s.ApplySnapshot(snapshotOf(m, tree.ID(), "never-seen"))

	require.Len(t, s.Entities(), 1)
	assert.Equal(t, p.ID(), s.Entities()[0].ID())
	assert.Nil(t, s.Entity(tree.ID()))
	_, ok := s.RenderPosition(tree.ID())
	assert.False(t, ok)
}

func TestInterpolateEasesTowardTarget(t *testing.T) {
	m := serverWorld(t)
	z := spawn(m, ecs.TypeZombie, geom.Vec(0, 0))

	s := New(zap.NewNop())
	s.ApplySnapshot(snapshotOf(m))
	pos, ok := s.RenderPosition(z.ID())
	require.True(t, ok)
	assert.Equal(t, geom.Vec(0, 0), pos)

	ecs.Get[*ext.Positionable](z).SetPosition(geom.Vec(100, 0))
	s.ApplySnapshot(snapshotOf(m))

	s.Interpolate()
	pos, _ = s.RenderPosition(z.ID())
	assert.InDelta(t, 10, pos.X, 1e-9)

	s.Interpolate()
	pos, _ = s.RenderPosition(z.ID())
	assert.InDelta(t, 19, pos.X, 1e-9)

	for i := 0; i < 200; i++ {
		s.Interpolate()
	}
	pos, _ = s.RenderPosition(z.ID())
	assert.InDelta(t, 100, pos.X, 1e-6)
}

func TestBadRecordDoesNotStopSnapshot(t *testing.T) {
	m := serverWorld(t)
	p := spawn(m, ecs.TypePlayer, geom.Vec(0, 0))

	snap := snapshotOf(m)
	snap.Entities = append([]ecs.Record{
		{"id": "x1", "type": "mystery", "extensions": []any{"warpDrive"}},
		{"type": "tree"},
	}, snap.Entities...)

	s := New(zap.NewNop())
	s.ApplySnapshot(snap)
	require.Len(t, s.Entities(), 1)
	assert.Equal(t, p.ID(), s.Entities()[0].ID())
}

func TestGameOverAndMapFrames(t *testing.T) {
	s := New(zap.NewNop())
	require.NoError(t, s.HandleFrame(wire(t, event.GameOver{})))
	assert.True(t, s.GameOver)

	require.NoError(t, s.HandleFrame(wire(t, event.Map{Tiles: [][]int{{0, 1}}, TileSize: 16})))
	assert.False(t, s.GameOver)
	assert.Equal(t, 16, s.Map.TileSize)

	require.NoError(t, s.HandleFrame(wire(t, event.ZombieHurt{ZombieID: "z"})))
	assert.Error(t, s.HandleFrame([]byte("nope")))
}

func TestAlivePlayers(t *testing.T) {
	m := serverWorld(t)
	a := spawn(m, ecs.TypePlayer, geom.Vec(0, 0))
	spawn(m, ecs.TypePlayer, geom.Vec(40, 0))
	spawn(m, ecs.TypeZombie, geom.Vec(200, 200))
	ecs.Get[*ext.Destructible](a).Kill()

	s := New(zap.NewNop())
	s.ApplySnapshot(snapshotOf(m))
	alive, total := s.AlivePlayers()
	assert.Equal(t, 1, alive)
	assert.Equal(t, 2, total)
}
