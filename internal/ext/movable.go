package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/geom"
)

// Movable owns velocity in pixels per second. Integration is done by the
// owning entity's controller so it can roll back on collision.
type Movable struct {
	self     *ecs.Entity
	velocity geom.Vector2
}

func NewMovable(self *ecs.Entity) *Movable {
	return &Movable{self: self}
}

func (m *Movable) Kind() ecs.Kind { return KindMovable }

func (m *Movable) Velocity() geom.Vector2     { return m.velocity }
func (m *Movable) SetVelocity(v geom.Vector2) { m.velocity = v }

func (m *Movable) Serialize(rec ecs.Record) {
	rec["velocity"] = m.velocity
}

func (m *Movable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Vector("velocity"); ok {
		m.velocity = v
	}
	return nil
}
