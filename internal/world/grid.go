package world

import (
	"math"
	"sort"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
)

// DefaultCellSize matches the map tile size so one bucket covers one tile.
const DefaultCellSize = 16

type gridEntry struct {
	e   *ecs.Entity
	seq int
}

// SpatialGrid buckets entities by the cell their position falls in. It is
// rebuilt from scratch every tick and accessed only from the tick goroutine.
//
// Queries over-approximate: the searched area is widened by the largest
// reach indexed since the last Clear, to the right and below as well as to
// the left and above, so an entity whose footprint or hitbox reaches into the
// query from a neighbouring bucket is never missed.
type SpatialGrid struct {
	cellSize  float64
	cols      int
	rows      int
	cells     [][]gridEntry
	maxExtent float64 // reach right of / below the position
	maxLead   float64 // reach left of / above the position
	count     int
}

func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]gridEntry, cols*rows),
	}
}

func (g *SpatialGrid) Len() int { return g.count }

// Clear empties every bucket, keeping their capacity for the next rebuild.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.maxExtent = 0
	g.maxLead = 0
	g.count = 0
}

// cellCoord truncates a world coordinate to a bucket index, clamping
// off-map positions into the border buckets.
func (g *SpatialGrid) cellCoord(v float64, limit int) int {
	c := int(math.Floor(v / g.cellSize))
	if c < 0 {
		return 0
	}
	if c >= limit {
		return limit - 1
	}
	return c
}

// AddEntity indexes e by its position. Entities without Positionable are ignored.
func (g *SpatialGrid) AddEntity(e *ecs.Entity) {
	p, ok := ecs.Find[*ext.Positionable](e)
	if !ok {
		return
	}
	pos := p.Position()
	cx := g.cellCoord(pos.X, g.cols)
	cy := g.cellCoord(pos.Y, g.rows)
	idx := cy*g.cols + cx
	g.cells[idx] = append(g.cells[idx], gridEntry{e: e, seq: g.count})
	g.count++

	g.widen(pos, p.Rect())
	if c, ok := ecs.Find[*ext.Collidable](e); ok {
		g.widen(pos, c.HitBox())
	}
}

// widen grows the query margins so that r, anchored at pos, stays reachable.
func (g *SpatialGrid) widen(pos geom.Vector2, r geom.Rectangle) {
	g.maxExtent = math.Max(g.maxExtent, math.Max(r.Right()-pos.X, r.Bottom()-pos.Y))
	g.maxLead = math.Max(g.maxLead, math.Max(pos.X-r.Left(), pos.Y-r.Top()))
}

// GetNearbyEntities returns entities whose footprint lies within radius of pos.
func (g *SpatialGrid) GetNearbyEntities(pos geom.Vector2, radius float64, filter ...ecs.Type) []*ecs.Entity {
	circle := geom.Circle{Center: pos, Radius: radius}
	candidates := g.GetNearbyEntitiesByRange(circle, filter...)
	out := candidates[:0]
	for _, e := range candidates {
		if circle.Intersects(ecs.Get[*ext.Positionable](e).Rect()) {
			out = append(out, e)
		}
	}
	return out
}

// GetNearbyEntitiesByRange returns every entity that may overlap shape, in
// insertion order. Callers do exact intersection filtering.
func (g *SpatialGrid) GetNearbyEntitiesByRange(shape geom.Shape, filter ...ecs.Type) []*ecs.Entity {
	if g.count == 0 {
		return nil
	}
	bb := shape.BoundingBox()
	// An entity reaching into bb can sit up to maxExtent left of or above it,
	// or up to maxLead right of or below it.
	minX := g.cellCoord(bb.Left()-g.maxExtent, g.cols)
	minY := g.cellCoord(bb.Top()-g.maxExtent, g.rows)
	maxX := g.cellCoord(bb.Right()+g.maxLead, g.cols)
	maxY := g.cellCoord(bb.Bottom()+g.maxLead, g.rows)

	var found []gridEntry
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			for _, ent := range g.cells[cy*g.cols+cx] {
				if len(filter) > 0 && !ecs.ContainsType(filter, ent.e.Type()) {
					continue
				}
				found = append(found, ent)
			}
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	out := make([]*ecs.Entity, len(found))
	for i, ent := range found {
		out[i] = ent.e
	}
	return out
}
