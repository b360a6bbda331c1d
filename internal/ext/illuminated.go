package ext

import "github.com/survivethenight/server/internal/core/ecs"

// Illuminated makes the owner a light source of the given radius at night.
type Illuminated struct {
	self   *ecs.Entity
	radius float64
}

func NewIlluminated(self *ecs.Entity, radius float64) *Illuminated {
	return &Illuminated{self: self, radius: radius}
}

func (i *Illuminated) Kind() ecs.Kind  { return KindIlluminated }
func (i *Illuminated) Radius() float64 { return i.radius }

func (i *Illuminated) Serialize(rec ecs.Record) {
	rec["illuminationRadius"] = i.radius
}

func (i *Illuminated) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Float("illuminationRadius"); ok {
		i.radius = v
	}
	return nil
}
