// Package mapgen builds the tile grid and the static world (boundary, trees)
// and places players and night waves on it.
package mapgen

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
	"github.com/survivethenight/server/internal/scripting"
)

// Tile ids sent to clients.
const (
	TileGrass = 0
	TileDirt  = 1
	TileSand  = 2
)

const (
	// spawnClearRadius keeps trees off the tiles around the player spawn.
	spawnClearRadius = 3
	// minZombieDistance is the closest, in tiles, a wave spawns to the player spawn.
	minZombieDistance = 8
	maxPlacementTries = 32
)

type Config struct {
	Width       int // tiles
	Height      int // tiles
	TileSize    int // pixels
	Seed        int64
	TreeDensity float64 // chance of a tree on a forest tile
}

// Entities is the part of the entity manager the generator populates.
type Entities interface {
	Clear()
	SetMapSize(width, height float64)
	CreateEntity(t ecs.Type) *ecs.Entity
	AddEntity(e *ecs.Entity)
}

// WavePlanner decides the composition of a night's spawn.
type WavePlanner interface {
	PlanWave(day int) []scripting.WaveGroup
}

// Generator owns the current map. Accessed only from the tick goroutine.
type Generator struct {
	cfg   Config
	ents  Entities
	waves WavePlanner
	log   *zap.Logger

	rng   *rand.Rand
	tiles [][]int
	spawn geom.Vector2
}

func New(cfg Config, ents Entities, waves WavePlanner, log *zap.Logger) *Generator {
	return &Generator{
		cfg:   cfg,
		ents:  ents,
		waves: waves,
		log:   log,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
}

// GenerateMap clears every entity, sizes the spatial grid and lays out a
// fresh map: noise tiles, a boundary ring and trees.
func (g *Generator) GenerateMap() {
	w, h, ts := g.cfg.Width, g.cfg.Height, float64(g.cfg.TileSize)

	g.ents.Clear()
	g.ents.SetMapSize(float64(w)*ts, float64(h)*ts)

	noise := perlin.NewPerlin(2, 2, 3, g.rng.Int63())
	g.tiles = make([][]int, h)
	forest := make([][]bool, h)
	for y := 0; y < h; y++ {
		g.tiles[y] = make([]int, w)
		forest[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			n := (noise.Noise2D(float64(x)/10, float64(y)/10) + 1) / 2
			switch {
			case n > 0.6:
				g.tiles[y][x] = TileDirt
				forest[y][x] = true
			case n < 0.35:
				g.tiles[y][x] = TileSand
			default:
				g.tiles[y][x] = TileGrass
			}
		}
	}

	cx, cy := w/2, h/2
	g.spawn = geom.Vec(float64(cx)*ts, float64(cy)*ts)

	boundaries, trees := 0, 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				if g.place(ecs.TypeBoundary, float64(x)*ts, float64(y)*ts) {
					boundaries++
				}
				continue
			}
			if abs(x-cx) <= spawnClearRadius && abs(y-cy) <= spawnClearRadius {
				continue
			}
			if forest[y][x] && g.rng.Float64() < g.cfg.TreeDensity {
				if g.place(ecs.TypeTree, float64(x)*ts, float64(y)*ts) {
					trees++
				}
			}
		}
	}

	g.log.Info("map generated",
		zap.Int("width", w), zap.Int("height", h),
		zap.Int("boundaries", boundaries), zap.Int("trees", trees))
}

func (g *Generator) place(t ecs.Type, x, y float64) bool {
	e := g.ents.CreateEntity(t)
	if e == nil {
		return false
	}
	ecs.Get[*ext.Positionable](e).SetPosition(geom.Vec(x, y))
	g.ents.AddEntity(e)
	return true
}

// Tiles returns the tile grid, rows first.
func (g *Generator) Tiles() [][]int { return g.tiles }

// SpawnPoint is the top-left pixel of the player spawn tile.
func (g *Generator) SpawnPoint() geom.Vector2 { return g.spawn }

// MapEvent is the payload sent to clients describing the current map.
func (g *Generator) MapEvent() event.Map {
	return event.Map{Tiles: g.tiles, TileSize: g.cfg.TileSize}
}

// PlacePlayer positions p inside the cleared area around the spawn point.
func (g *Generator) PlacePlayer(p *ecs.Entity) {
	ts := float64(g.cfg.TileSize)
	dx := float64(g.rng.Intn(2*spawnClearRadius+1) - spawnClearRadius)
	dy := float64(g.rng.Intn(2*spawnClearRadius+1) - spawnClearRadius)
	ecs.Get[*ext.Positionable](p).SetPosition(g.spawn.Add(geom.Vec(dx*ts, dy*ts)))
}

// SpawnZombies places the night wave planned for day on random inner tiles
// away from the player spawn. It returns the number of zombies added.
func (g *Generator) SpawnZombies(day int) int {
	if len(g.tiles) == 0 {
		return 0
	}
	spawned := 0
	for _, group := range g.waves.PlanWave(day) {
		for i := 0; i < group.Count; i++ {
			x, y, ok := g.randomWaveTile()
			if !ok {
				continue
			}
			ts := float64(g.cfg.TileSize)
			if g.place(group.Type, float64(x)*ts, float64(y)*ts) {
				spawned++
			}
		}
	}
	g.log.Info("zombies spawned", zap.Int("day", day), zap.Int("count", spawned))
	return spawned
}

func (g *Generator) randomWaveTile() (int, int, bool) {
	w, h := g.cfg.Width, g.cfg.Height
	if w < 3 || h < 3 {
		return 0, 0, false
	}
	cx, cy := w/2, h/2
	for try := 0; try < maxPlacementTries; try++ {
		x := 1 + g.rng.Intn(w-2)
		y := 1 + g.rng.Intn(h-2)
		if math.Hypot(float64(x-cx), float64(y-cy)) >= minZombieDistance {
			return x, y, true
		}
	}
	return 0, 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
