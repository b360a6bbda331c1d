package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/geom"
)

// Positionable owns an entity's top-left position and size.
type Positionable struct {
	self     *ecs.Entity
	position geom.Vector2
	size     geom.Vector2
}

func NewPositionable(self *ecs.Entity) *Positionable {
	return &Positionable{self: self}
}

func (p *Positionable) Kind() ecs.Kind { return KindPositionable }

func (p *Positionable) Position() geom.Vector2     { return p.position }
func (p *Positionable) SetPosition(v geom.Vector2) { p.position = v }
func (p *Positionable) Size() geom.Vector2         { return p.size }

// SetSize sets a square size.
func (p *Positionable) SetSize(s float64) *Positionable {
	p.size = geom.Vector2{X: s, Y: s}
	return p
}

func (p *Positionable) SetSizeVec(s geom.Vector2) *Positionable {
	p.size = s
	return p
}

func (p *Positionable) Center() geom.Vector2 {
	return p.position.Add(p.size.Div(2))
}

// Rect is the full footprint of the entity.
func (p *Positionable) Rect() geom.Rectangle {
	return geom.Rectangle{Position: p.position, Size: p.size}
}

func (p *Positionable) Serialize(rec ecs.Record) {
	rec["position"] = p.position
	rec["size"] = p.size
}

func (p *Positionable) Deserialize(rec ecs.Record) error {
	pos, err := rec.RequireVector("position")
	if err != nil {
		return err
	}
	p.position = pos
	if size, ok := rec.Vector("size"); ok {
		p.size = size
	}
	return nil
}
