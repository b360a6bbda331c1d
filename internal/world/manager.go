package world

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
	"go.uber.org/zap"
)

// DefaultNearbyRadius is the radius used by GetNearbyEnemies.
const DefaultNearbyRadius = 64

var ErrUnknownItemType = errors.New("unknown item type")

// Constructor builds an entity of a fixed type.
type Constructor func(m ecs.Managers) *ecs.Entity

// ItemConstructor builds the world entity for an inventory item.
type ItemConstructor func(m ecs.Managers, state ecs.Record) *ecs.Entity

type removal struct {
	id         string
	expiration time.Time
}

// Manager is the authoritative entity registry. It owns the live entity list
// and the spatial grid, drives per-tick extension updates and applies
// deferred removals. Accessed only from the tick goroutine.
type Manager struct {
	entities []*ecs.Entity
	byID     map[string]*ecs.Entity
	toRemove []removal
	nextID   uint64

	grid     *SpatialGrid
	cellSize float64

	managers ecs.Managers
	types    map[ecs.Type]Constructor
	items    map[string]ItemConstructor
	tracker  *StateTracker

	now func() time.Time
	log *zap.Logger
}

type Option func(*Manager)

// WithClock replaces time.Now for removal expirations.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithCellSize(size float64) Option {
	return func(m *Manager) { m.cellSize = size }
}

// WithTrackerCapacity bounds the number of undrained removals kept.
func WithTrackerCapacity(n int) Option {
	return func(m *Manager) { m.tracker = NewStateTracker(n) }
}

func NewManager(log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		entities: make([]*ecs.Entity, 0, 256),
		byID:     make(map[string]*ecs.Entity, 256),
		cellSize: DefaultCellSize,
		types:    make(map[ecs.Type]Constructor),
		items:    make(map[string]ItemConstructor),
		tracker:  NewStateTracker(0),
		now:      time.Now,
		log:      log,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetGameManagers attaches the handle passed to entity constructors.
func (m *Manager) SetGameManagers(gm ecs.Managers) {
	m.managers = gm
}

// GameManagers returns the attached handle and panics when none is attached.
func (m *Manager) GameManagers() ecs.Managers {
	if m.managers == nil {
		panic(ecs.ErrManagersDetached)
	}
	return m.managers
}

// SetMapSize (re)creates the spatial grid for a map of the given pixel size.
func (m *Manager) SetMapSize(width, height float64) {
	m.grid = NewSpatialGrid(width, height, m.cellSize)
}

func (m *Manager) StateTracker() *StateTracker { return m.tracker }

// GenerateEntityID returns the next id of this manager's monotonic counter.
func (m *Manager) GenerateEntityID() string {
	id := strconv.FormatUint(m.nextID, 10)
	m.nextID++
	return id
}

// RegisterEntityType installs the constructor used by CreateEntity.
func (m *Manager) RegisterEntityType(t ecs.Type, ctor Constructor) {
	m.types[t] = ctor
}

// RegisterItem installs the constructor for an item key. The first
// registration for a key wins; later ones are ignored.
func (m *Manager) RegisterItem(key string, ctor ItemConstructor) {
	if _, exists := m.items[key]; exists {
		return
	}
	m.items[key] = ctor
}

func (m *Manager) HasRegisteredItem(key string) bool {
	_, ok := m.items[key]
	return ok
}

// CreateEntity builds an entity of type t. Unknown types are logged and yield nil.
func (m *Manager) CreateEntity(t ecs.Type) *ecs.Entity {
	ctor, ok := m.types[t]
	if !ok {
		m.log.Warn("createEntity failed: unknown entity type", zap.String("type", string(t)))
		return nil
	}
	return ctor(m.GameManagers())
}

// CreateEntityFromItem builds the world entity for an inventory item.
func (m *Manager) CreateEntityFromItem(item ecs.Item) (*ecs.Entity, error) {
	ctor, ok := m.items[item.ItemType]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownItemType, item.ItemType)
	}
	return ctor(m.GameManagers(), item.State), nil
}

// MustCreateEntityFromItem is CreateEntityFromItem for trusted internal
// state; an unregistered key is a programming error and panics.
func (m *Manager) MustCreateEntityFromItem(item ecs.Item) *ecs.Entity {
	e, err := m.CreateEntityFromItem(item)
	if err != nil {
		panic(err)
	}
	return e
}

// AddEntity appends e to the live set. Duplicate ids are a caller error.
func (m *Manager) AddEntity(e *ecs.Entity) {
	m.entities = append(m.entities, e)
	m.byID[e.ID()] = e
}

func (m *Manager) AddEntities(es []*ecs.Entity) {
	for _, e := range es {
		m.AddEntity(e)
	}
}

func (m *Manager) Entities() []*ecs.Entity { return m.entities }

func (m *Manager) GetEntityByID(id string) *ecs.Entity {
	return m.byID[id]
}

// Clear drops every entity and pending removal.
func (m *Manager) Clear() {
	m.entities = m.entities[:0]
	m.byID = make(map[string]*ecs.Entity, 256)
	m.toRemove = m.toRemove[:0]
	if m.grid != nil {
		m.grid.Clear()
	}
}

// MarkEntityForRemoval schedules e to leave the live set once delay has
// elapsed. Marks accumulate; PruneEntities honours the most recent one.
func (m *Manager) MarkEntityForRemoval(e *ecs.Entity, delay time.Duration) {
	m.toRemove = append(m.toRemove, removal{
		id:         e.ID(),
		expiration: m.now().Add(delay),
	})
}

// PendingRemovals returns the number of removal records not yet consumed.
func (m *Manager) PendingRemovals() int { return len(m.toRemove) }

// PruneEntities removes every entity whose latest removal record has expired.
func (m *Manager) PruneEntities() {
	if len(m.toRemove) == 0 {
		return
	}
	now := m.now()
	if len(m.entities) > 0 {
		m.sweep(now)
	}

	pending := m.toRemove[:0]
	for _, r := range m.toRemove {
		if now.Before(r.expiration) {
			pending = append(pending, r)
		}
	}
	m.toRemove = pending
}

func (m *Manager) sweep(now time.Time) {
	kept := m.entities[:0]
	for _, e := range m.entities {
		idx := m.lastRemovalIndex(e.ID())
		if idx < 0 || now.Before(m.toRemove[idx].expiration) {
			kept = append(kept, e)
			continue
		}
		m.tracker.TrackRemoval(e.ID())
		delete(m.byID, e.ID())
		m.toRemove = append(m.toRemove[:idx], m.toRemove[idx+1:]...)
	}
	for i := len(kept); i < len(m.entities); i++ {
		m.entities[i] = nil
	}
	m.entities = kept
}

func (m *Manager) lastRemovalIndex(id string) int {
	for i := len(m.toRemove) - 1; i >= 0; i-- {
		if m.toRemove[i].id == id {
			return i
		}
	}
	return -1
}

// Update rebuilds the spatial grid, then runs every extension update hook of
// every entity in insertion order. Entities added during the pass are first
// updated next tick.
//
// A panic inside one entity's update is recovered and logged so the rest of
// the tick still runs.
func (m *Manager) Update(dt float64) {
	m.refreshSpatialGrid()

	snapshot := m.entities
	for _, e := range snapshot {
		m.updateEntity(e, dt)
	}
}

func (m *Manager) updateEntity(e *ecs.Entity, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("entity update panicked",
				zap.String("id", e.ID()),
				zap.String("type", string(e.Type())),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	e.Update(dt)
}

func (m *Manager) refreshSpatialGrid() {
	if m.grid == nil {
		return
	}
	m.grid.Clear()
	for _, e := range m.entities {
		m.grid.AddEntity(e)
	}
}

func (m *Manager) GetNearbyEntities(pos geom.Vector2, radius float64, filter ...ecs.Type) []*ecs.Entity {
	if m.grid == nil {
		return nil
	}
	return m.grid.GetNearbyEntities(pos, radius, filter...)
}

func (m *Manager) GetNearbyEntitiesByRange(shape geom.Shape, filter ...ecs.Type) []*ecs.Entity {
	if m.grid == nil {
		return nil
	}
	return m.grid.GetNearbyEntitiesByRange(shape, filter...)
}

// GetNearbyEnemies returns nearby entities in the enemy group.
func (m *Manager) GetNearbyEnemies(pos geom.Vector2) []*ecs.Entity {
	var out []*ecs.Entity
	for _, e := range m.GetNearbyEntities(pos, DefaultNearbyRadius) {
		if g, ok := ecs.Find[*ext.Groupable](e); ok && g.Group() == ext.GroupEnemy {
			out = append(out, e)
		}
	}
	return out
}

// GetIntersectingCollidableEntity returns the first enabled collidable whose
// hitbox overlaps src's, scanning candidates in insertion order. src must be
// collidable.
func (m *Manager) GetIntersectingCollidableEntity(src *ecs.Entity, ignore ...ecs.Type) *ecs.Entity {
	if m.grid == nil {
		return nil
	}
	hitBox := ecs.Get[*ext.Collidable](src).HitBox()

	for _, other := range m.grid.GetNearbyEntitiesByRange(hitBox) {
		if len(ignore) > 0 && ecs.ContainsType(ignore, other.Type()) {
			continue
		}
		c, ok := ecs.Find[*ext.Collidable](other)
		if !ok || !c.IsEnabled() || other == src {
			continue
		}
		if hitBox.Intersects(c.HitBox()) {
			return other
		}
	}
	return nil
}

// IsColliding is an alias of GetIntersectingCollidableEntity.
func (m *Manager) IsColliding(src *ecs.Entity, ignore ...ecs.Type) *ecs.Entity {
	return m.GetIntersectingCollidableEntity(src, ignore...)
}

// GetNearbyIntersectingDestructibleEntities returns every living destructible
// other than src whose damage box overlaps hitbox.
func (m *Manager) GetNearbyIntersectingDestructibleEntities(src *ecs.Entity, hitbox geom.Rectangle) []*ecs.Entity {
	if m.grid == nil {
		return nil
	}
	var out []*ecs.Entity
	for _, other := range m.grid.GetNearbyEntitiesByRange(hitbox) {
		d, ok := ecs.Find[*ext.Destructible](other)
		if !ok || other == src || d.IsDead() {
			continue
		}
		if hitbox.Intersects(d.DamageBox()) {
			out = append(out, other)
		}
	}
	return out
}

// PlayerEntities returns live players in insertion order.
func (m *Manager) PlayerEntities() []*ecs.Entity {
	var out []*ecs.Entity
	for _, e := range m.entities {
		if e.Type() == ecs.TypePlayer {
			out = append(out, e)
		}
	}
	return out
}

// ZombieEntities returns live enemies of every zombie kind.
func (m *Manager) ZombieEntities() []*ecs.Entity {
	var out []*ecs.Entity
	for _, e := range m.entities {
		if e.Type().IsZombie() {
			out = append(out, e)
		}
	}
	return out
}

// GetClosestPlayer returns the nearest player to e, or nil when e has no
// position or there are no players. Ties keep the earlier player.
func (m *Manager) GetClosestPlayer(e *ecs.Entity) *ecs.Entity {
	return m.closest(e, m.PlayerEntities())
}

// GetClosestAlivePlayer is GetClosestPlayer restricted to living players.
func (m *Manager) GetClosestAlivePlayer(e *ecs.Entity) *ecs.Entity {
	var alive []*ecs.Entity
	for _, p := range m.PlayerEntities() {
		if !IsDead(p) {
			alive = append(alive, p)
		}
	}
	return m.closest(e, alive)
}

func (m *Manager) closest(e *ecs.Entity, players []*ecs.Entity) *ecs.Entity {
	self, ok := ecs.Find[*ext.Positionable](e)
	if !ok || len(players) == 0 {
		return nil
	}
	origin := self.Position()
	best := 0
	bestDist := geom.Distance(origin, ecs.Get[*ext.Positionable](players[0]).Position())
	for i := 1; i < len(players); i++ {
		d := geom.Distance(origin, ecs.Get[*ext.Positionable](players[i]).Position())
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return players[best]
}

// IsDead reports whether e is destructible and has no health left.
func IsDead(e *ecs.Entity) bool {
	d, ok := ecs.Find[*ext.Destructible](e)
	return ok && d.IsDead()
}

var _ ecs.Queries = (*Manager)(nil)
