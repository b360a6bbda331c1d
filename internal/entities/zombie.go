package entities

import (
	"time"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
)

var zombieKinds = []ecs.Type{ecs.TypeZombie, ecs.TypeFastZombie, ecs.TypeBigZombie}

// Zombie chases the closest living player and hits it on contact.
type Zombie struct {
	self           *ecs.Entity
	tpl            *data.EntityTemplate
	attackCooldown float64
}

func (c *catalog) zombieOf(t ecs.Type) func(ecs.Managers) *ecs.Entity {
	return func(gm ecs.Managers) *ecs.Entity {
		tpl := c.tbl.MustGet(t)
		e := c.base(gm, tpl)
		e.AddExtension(ext.NewMovable(e))
		e.AddExtension(ext.NewDestructible(e).SetHealth(tpl.Health).
			OnDamaged(func(float64) {
				gm.Broadcaster().BroadcastEvent(event.ZombieHurt{ZombieID: e.ID()})
			}).
			OnDeath(func() {
				ecs.Get[*ext.Movable](e).SetVelocity(geom.Vector2{})
				if col, ok := ecs.Find[*ext.Collidable](e); ok {
					col.SetEnabled(false)
				}
				gm.Broadcaster().BroadcastEvent(event.ZombieDeath{ZombieID: e.ID()})
				gm.Entities().MarkEntityForRemoval(e, time.Duration(tpl.DeathRemovalMs)*time.Millisecond)
			}))
		e.AddExtension(&Zombie{self: e, tpl: tpl})
		return e
	}
}

func (z *Zombie) Kind() ecs.Kind { return KindZombie }

func (z *Zombie) Update(dt float64) {
	if d, ok := ecs.Find[*ext.Destructible](z.self); ok && d.IsDead() {
		return
	}
	z.attackCooldown -= dt

	mov := ecs.Get[*ext.Movable](z.self)
	target := z.self.Managers().Entities().GetClosestAlivePlayer(z.self)
	if target == nil {
		mov.SetVelocity(geom.Vector2{})
		return
	}

	from := ecs.Get[*ext.Positionable](z.self).Center()
	to := ecs.Get[*ext.Positionable](target).Center()

	if geom.Distance(from, to) <= z.tpl.AttackRange {
		mov.SetVelocity(geom.Vector2{})
		if z.attackCooldown <= 0 {
			z.attackCooldown = z.tpl.AttackCooldown
			ecs.Get[*ext.Destructible](target).Damage(z.tpl.Damage)
		}
		return
	}

	mov.SetVelocity(to.Sub(from).Normalized().Mul(z.tpl.Speed))
	step(z.self, mov.Velocity(), dt, zombieKinds...)
}

func (z *Zombie) Serialize(ecs.Record)         {}
func (z *Zombie) Deserialize(ecs.Record) error { return nil }
