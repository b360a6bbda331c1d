package ecs

import (
	"errors"
	"time"

	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/geom"
)

var ErrManagersDetached = errors.New("game managers not attached")

// Managers is the handle entities use to reach the simulation. It is a
// non-owning back-reference injected at construction.
type Managers interface {
	Entities() Queries
	Broadcaster() Broadcaster
}

// Broadcaster accepts one-shot events for delivery to clients.
type Broadcaster interface {
	BroadcastEvent(ev event.Event)
}

// Queries is the part of the entity manager extensions are allowed to use
// during their update.
type Queries interface {
	GenerateEntityID() string
	AddEntity(e *Entity)
	GetEntityByID(id string) *Entity
	MarkEntityForRemoval(e *Entity, delay time.Duration)
	CreateEntity(t Type) *Entity
	CreateEntityFromItem(item Item) (*Entity, error)
	HasRegisteredItem(key string) bool

	GetNearbyEntities(pos geom.Vector2, radius float64, filter ...Type) []*Entity
	GetNearbyEntitiesByRange(shape geom.Shape, filter ...Type) []*Entity
	GetNearbyEnemies(pos geom.Vector2) []*Entity
	GetIntersectingCollidableEntity(src *Entity, ignore ...Type) *Entity
	GetNearbyIntersectingDestructibleEntities(src *Entity, hitbox geom.Rectangle) []*Entity
	GetClosestPlayer(e *Entity) *Entity
	GetClosestAlivePlayer(e *Entity) *Entity
}
