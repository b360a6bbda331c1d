package mapgen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/entities"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/scripting"
	"github.com/survivethenight/server/internal/world"
)

type handle struct{ m *world.Manager }

func (h handle) Entities() ecs.Queries         { return h.m }
func (h handle) Broadcaster() ecs.Broadcaster  { return h }
func (h handle) BroadcastEvent(ev event.Event) {}

type fixedWave []scripting.WaveGroup

func (w fixedWave) PlanWave(int) []scripting.WaveGroup { return w }

func newManager(t *testing.T) *world.Manager {
	t.Helper()
	tbl, err := data.DefaultEntityTable()
	require.NoError(t, err)
	m := world.NewManager(zap.NewNop())
	m.SetGameManagers(handle{m})
	entities.Register(m, tbl, zap.NewNop())
	return m
}

func testConfig() Config {
	return Config{Width: 40, Height: 30, TileSize: 16, Seed: 7, TreeDensity: 1}
}

func countType(m *world.Manager, typ ecs.Type) int {
	n := 0
	for _, e := range m.Entities() {
		if e.Type() == typ {
			n++
		}
	}
	return n
}

func TestGenerateMapLayout(t *testing.T) {
	m := newManager(t)
	g := New(testConfig(), m, fixedWave(nil), zap.NewNop())
	g.GenerateMap()

	require.Len(t, g.Tiles(), 30)
	require.Len(t, g.Tiles()[0], 40)
	assert.Equal(t, 2*40+2*28, countType(m, ecs.TypeBoundary))

	spawn := g.SpawnPoint()
	assert.Equal(t, 20.0*16, spawn.X)
	assert.Equal(t, 15.0*16, spawn.Y)
	for _, e := range m.Entities() {
		pos := ecs.Get[*ext.Positionable](e).Position()
		assert.True(t, pos.X >= 0 && pos.X < 40*16 && pos.Y >= 0 && pos.Y < 30*16)
		if e.Type() == ecs.TypeTree {
			assert.Greater(t, math.Max(math.Abs(pos.X-spawn.X), math.Abs(pos.Y-spawn.Y)), float64(spawnClearRadius*16))
		}
	}

	ev := g.MapEvent()
	assert.Equal(t, 16, ev.TileSize)
	assert.Equal(t, g.Tiles(), ev.Tiles)
}

func TestGenerateMapIsDeterministicPerSeed(t *testing.T) {
	a := New(testConfig(), newManager(t), fixedWave(nil), zap.NewNop())
	b := New(testConfig(), newManager(t), fixedWave(nil), zap.NewNop())
	a.GenerateMap()
	b.GenerateMap()
	assert.Equal(t, a.Tiles(), b.Tiles())
}

func TestGenerateMapReplacesEntities(t *testing.T) {
	m := newManager(t)
	g := New(testConfig(), m, fixedWave(nil), zap.NewNop())
	g.GenerateMap()
	m.AddEntity(m.CreateEntity(ecs.TypeZombie))

	g.GenerateMap()
	assert.Equal(t, 0, countType(m, ecs.TypeZombie))
	assert.Equal(t, 2*40+2*28, countType(m, ecs.TypeBoundary))
}

func TestSpawnZombiesFollowsPlan(t *testing.T) {
	m := newManager(t)
	plan := fixedWave{{Type: ecs.TypeZombie, Count: 3}, {Type: ecs.TypeFastZombie, Count: 2}}
	g := New(testConfig(), m, plan, zap.NewNop())

	assert.Equal(t, 0, g.SpawnZombies(1), "no map yet")

	g.GenerateMap()
	assert.Equal(t, 5, g.SpawnZombies(1))
	assert.Equal(t, 3, countType(m, ecs.TypeZombie))
	assert.Equal(t, 2, countType(m, ecs.TypeFastZombie))

	spawn := g.SpawnPoint()
	for _, z := range m.ZombieEntities() {
		pos := ecs.Get[*ext.Positionable](z).Position()
		assert.GreaterOrEqual(t, math.Hypot(pos.X-spawn.X, pos.Y-spawn.Y), float64(minZombieDistance*16))
	}
}

func TestPlacePlayerNearSpawn(t *testing.T) {
	m := newManager(t)
	g := New(testConfig(), m, fixedWave(nil), zap.NewNop())
	g.GenerateMap()

	p := m.CreateEntity(ecs.TypePlayer)
	g.PlacePlayer(p)
	pos := ecs.Get[*ext.Positionable](p).Position()
	spawn := g.SpawnPoint()
	assert.LessOrEqual(t, math.Abs(pos.X-spawn.X), float64(spawnClearRadius*16))
	assert.LessOrEqual(t, math.Abs(pos.Y-spawn.Y), float64(spawnClearRadius*16))
}
