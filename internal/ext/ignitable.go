package ext

import "github.com/survivethenight/server/internal/core/ecs"

const (
	burnDamagePerTick = 1.0
	burnTickInterval  = 1.0
	burnDuration      = 5.0
)

// Ignitable burns its owner: one point of damage per second until the fire
// dies out, then it detaches itself.
type Ignitable struct {
	self      *ecs.Entity
	remaining float64
	acc       float64
}

func NewIgnitable(self *ecs.Entity) *Ignitable {
	return &Ignitable{self: self, remaining: burnDuration}
}

func (i *Ignitable) Kind() ecs.Kind     { return KindIgnitable }
func (i *Ignitable) Remaining() float64 { return i.remaining }

func (i *Ignitable) Update(dt float64) {
	i.remaining -= dt
	i.acc += dt
	if d, ok := ecs.Find[*Destructible](i.self); ok && !d.IsDead() {
		for i.acc >= burnTickInterval {
			i.acc -= burnTickInterval
			d.Damage(burnDamagePerTick)
		}
	}
	if i.remaining <= 0 {
		i.self.RemoveExtension(KindIgnitable)
	}
}

func (i *Ignitable) Serialize(rec ecs.Record) {
	rec["burnRemaining"] = i.remaining
}

func (i *Ignitable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Float("burnRemaining"); ok {
		i.remaining = v
	}
	return nil
}
