package ext

import "github.com/survivethenight/server/internal/core/ecs"

// Expirable removes its owner after a lifetime in seconds.
type Expirable struct {
	self      *ecs.Entity
	remaining float64
	expired   bool
}

func NewExpirable(self *ecs.Entity, seconds float64) *Expirable {
	return &Expirable{self: self, remaining: seconds}
}

func (x *Expirable) Kind() ecs.Kind     { return KindExpirable }
func (x *Expirable) Remaining() float64 { return x.remaining }

func (x *Expirable) Update(dt float64) {
	if x.expired {
		return
	}
	x.remaining -= dt
	if x.remaining <= 0 {
		x.remaining = 0
		x.expired = true
		x.self.Managers().Entities().MarkEntityForRemoval(x.self, 0)
	}
}

func (x *Expirable) Serialize(rec ecs.Record) {
	rec["expiresIn"] = x.remaining
}

func (x *Expirable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Float("expiresIn"); ok {
		x.remaining = v
	}
	return nil
}
