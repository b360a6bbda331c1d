package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
)

func TestGridRangeHasNoFalseNegatives(t *testing.T) {
	m, _ := newTestManager()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		box(m, ecs.TypeTree, rng.Float64()*110-5, rng.Float64()*110-5, 1+rng.Float64()*30)
	}
	m.Update(0)

	for q := 0; q < 200; q++ {
		query := geom.Rect(rng.Float64()*100, rng.Float64()*100, rng.Float64()*20, rng.Float64()*20)
		got := m.GetNearbyEntitiesByRange(query)

		inGrid := make(map[string]bool, len(got))
		for _, e := range got {
			inGrid[e.ID()] = true
		}
		var exact, filtered []string
		for _, e := range m.Entities() {
			if query.Intersects(ecs.Get[*ext.Positionable](e).Rect()) {
				exact = append(exact, e.ID())
				require.True(t, inGrid[e.ID()], "entity %s missed by query %v", e.ID(), query)
			}
		}
		for _, e := range got {
			if query.Intersects(ecs.Get[*ext.Positionable](e).Rect()) {
				filtered = append(filtered, e.ID())
			}
		}
		assert.Equal(t, exact, filtered)
	}
}

func TestGridReturnsInsertionOrder(t *testing.T) {
	g := NewSpatialGrid(100, 100, 16)
	m, _ := newTestManager()
	far := box(m, ecs.TypeTree, 90, 90, 4)
	near := box(m, ecs.TypeTree, 1, 1, 4)
	g.AddEntity(far)
	g.AddEntity(near)

	got := g.GetNearbyEntitiesByRange(geom.Rect(0, 0, 100, 100))
	assert.Equal(t, []*ecs.Entity{far, near}, got)
}

func TestGridTypeFilterAndClear(t *testing.T) {
	g := NewSpatialGrid(64, 64, 16)
	m, _ := newTestManager()
	g.AddEntity(box(m, ecs.TypeTree, 10, 10, 8))
	zombie := box(m, ecs.TypeZombie, 12, 12, 8)
	g.AddEntity(zombie)

	got := g.GetNearbyEntities(geom.Vec(12, 12), 10, ecs.TypeZombie)
	assert.Equal(t, []*ecs.Entity{zombie}, got)

	g.Clear()
	assert.Zero(t, g.Len())
	assert.Empty(t, g.GetNearbyEntities(geom.Vec(12, 12), 10))
}

func TestGridSkipsEntitiesWithoutPosition(t *testing.T) {
	g := NewSpatialGrid(64, 64, 16)
	m, _ := newTestManager()
	g.AddEntity(ecs.New(m.GameManagers(), ecs.TypeSpikes))
	assert.Zero(t, g.Len())
}

func TestGridOffMapPositionsAreIndexed(t *testing.T) {
	g := NewSpatialGrid(64, 64, 16)
	m, _ := newTestManager()
	e := box(m, ecs.TypeBoundary, -16, -16, 16)
	g.AddEntity(e)

	assert.Equal(t, []*ecs.Entity{e}, g.GetNearbyEntitiesByRange(geom.Rect(-10, -10, 2, 2)))
}

func TestGridFindsHitboxReachingBackward(t *testing.T) {
	m, _ := newTestManager()
	wall := collidableBox(m, ecs.TypeWall, 40, 40, 16)
	ecs.Get[*ext.Collidable](wall).SetOffset(-20)
	mover := collidableBox(m, ecs.TypeZombie, 21, 21, 4)
	m.Update(0)

	assert.Contains(t, m.GetNearbyEntitiesByRange(geom.Rect(21, 21, 4, 4)), wall)
	assert.Equal(t, wall, m.GetIntersectingCollidableEntity(mover))

	g := NewSpatialGrid(100, 100, 16)
	g.AddEntity(wall)
	assert.Equal(t, []*ecs.Entity{wall}, g.GetNearbyEntitiesByRange(geom.Rect(21, 21, 4, 4)))
}
