package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/geom"
)

// Triggerable fires a callback once for every filtered entity whose footprint
// enters the trigger area anchored at the owner's position.
type Triggerable struct {
	self    *ecs.Entity
	size    geom.Vector2
	filter  []ecs.Type
	onEnter func(*ecs.Entity)
	inside  map[string]struct{}
}

func NewTriggerable(self *ecs.Entity, width, height float64, filter ...ecs.Type) *Triggerable {
	return &Triggerable{
		self:   self,
		size:   geom.Vector2{X: width, Y: height},
		filter: filter,
		inside: make(map[string]struct{}),
	}
}

func (t *Triggerable) Kind() ecs.Kind { return KindTriggerable }

func (t *Triggerable) OnEntityEntered(fn func(*ecs.Entity)) *Triggerable {
	t.onEnter = fn
	return t
}

func (t *Triggerable) Area() geom.Rectangle {
	pos := ecs.Get[*Positionable](t.self).Position()
	return geom.Rectangle{Position: pos, Size: t.size}
}

func (t *Triggerable) Update(float64) {
	area := t.Area()
	q := t.self.Managers().Entities()
	candidates := q.GetNearbyEntitiesByRange(area, t.filter...)

	now := make(map[string]struct{}, len(candidates))
	for _, other := range candidates {
		if other == t.self {
			continue
		}
		p, ok := ecs.Find[*Positionable](other)
		if !ok || !area.Intersects(p.Rect()) {
			continue
		}
		now[other.ID()] = struct{}{}
		if _, was := t.inside[other.ID()]; was {
			continue
		}
		if t.onEnter != nil {
			t.onEnter(other)
		}
	}
	t.inside = now
}

func (t *Triggerable) Serialize(rec ecs.Record) {
	rec["triggerSize"] = t.size
}

func (t *Triggerable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Vector("triggerSize"); ok {
		t.size = v
	}
	return nil
}
