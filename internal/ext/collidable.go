package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/geom"
)

// Collidable marks an entity as blocking. The hitbox is the owner's footprint
// shrunk by offset on every side, or an explicit size anchored at offset.
type Collidable struct {
	self    *ecs.Entity
	enabled bool
	offset  float64
	size    geom.Vector2
}

func NewCollidable(self *ecs.Entity) *Collidable {
	return &Collidable{self: self, enabled: true}
}

func (c *Collidable) Kind() ecs.Kind { return KindCollidable }

func (c *Collidable) IsEnabled() bool { return c.enabled }

func (c *Collidable) SetEnabled(v bool) *Collidable {
	c.enabled = v
	return c
}

func (c *Collidable) SetOffset(o float64) *Collidable {
	c.offset = o
	return c
}

func (c *Collidable) SetSize(s geom.Vector2) *Collidable {
	c.size = s
	return c
}

// HitBox returns the collision rectangle in world space.
func (c *Collidable) HitBox() geom.Rectangle {
	pos := ecs.Get[*Positionable](c.self)
	if !c.size.IsZero() {
		return geom.Rectangle{
			Position: pos.Position().Add(geom.Vector2{X: c.offset, Y: c.offset}),
			Size:     c.size,
		}
	}
	r := pos.Rect()
	return geom.Rectangle{
		Position: r.Position.Add(geom.Vector2{X: c.offset, Y: c.offset}),
		Size:     r.Size.Sub(geom.Vector2{X: 2 * c.offset, Y: 2 * c.offset}),
	}
}

func (c *Collidable) Serialize(rec ecs.Record) {
	rec["collidableEnabled"] = c.enabled
	rec["hitboxOffset"] = c.offset
	if !c.size.IsZero() {
		rec["hitboxSize"] = c.size
	}
}

func (c *Collidable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Bool("collidableEnabled"); ok {
		c.enabled = v
	}
	if v, ok := rec.Float("hitboxOffset"); ok {
		c.offset = v
	}
	if v, ok := rec.Vector("hitboxSize"); ok {
		c.size = v
	}
	return nil
}
