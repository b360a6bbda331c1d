package entities

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/ext"
)

// itemOf builds a plain pickup. Items with a use get a consume handler.
func (c *catalog) itemOf(t ecs.Type) func(ecs.Managers) *ecs.Entity {
	return func(gm ecs.Managers) *ecs.Entity {
		tpl := c.tbl.MustGet(t)
		e := c.base(gm, tpl)
		e.AddExtension(ext.NewCarryable(e, tpl.Carry))
		if h := consumeHandler(tpl); h != nil {
			e.AddExtension(ext.NewConsumable(e).OnConsume(h))
		}
		return e
	}
}

func consumeHandler(tpl *data.EntityTemplate) ext.ConsumeHandler {
	switch {
	case tpl.Heal > 0:
		return func(player *ecs.Entity, idx int) {
			d := ecs.Get[*ext.Destructible](player)
			if d.Health() >= d.MaxHealth() {
				return
			}
			d.Heal(tpl.Heal)
			ecs.Get[*ext.Inventory](player).RemoveAt(idx)
		}
	case tpl.Type == ecs.TypeGasoline:
		return func(player *ecs.Entity, idx int) {
			q := player.Managers().Entities()
			fire := q.CreateEntity(ecs.TypeFire)
			if fire == nil {
				return
			}
			ecs.Get[*ext.Positionable](fire).SetPosition(ecs.Get[*ext.Positionable](player).Position())
			q.AddEntity(fire)
			ecs.Get[*ext.Inventory](player).RemoveAt(idx)
		}
	case tpl.Type == ecs.TypeFireExtinguisher:
		return func(player *ecs.Entity, idx int) {
			if !player.HasExtension(ext.KindIgnitable) {
				return
			}
			player.RemoveExtension(ext.KindIgnitable)
			ecs.Get[*ext.Inventory](player).RemoveAt(idx)
		}
	}
	return nil
}

// newSpikes damages every zombie that steps onto it.
func (c *catalog) newSpikes(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypeSpikes)
	e := c.base(gm, tpl)
	e.AddExtension(ext.NewCarryable(e, tpl.Carry))
	e.AddExtension(ext.NewTriggerable(e, tpl.Size, tpl.Size, zombieKinds...).OnEntityEntered(func(z *ecs.Entity) {
		if d, ok := ecs.Find[*ext.Destructible](z); ok {
			d.Damage(tpl.Damage)
		}
	}))
	return e
}

// newLandmine blows up once the first zombie touches it, hurting every enemy
// in range.
func (c *catalog) newLandmine(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypeLandmine)
	e := c.base(gm, tpl)
	e.AddExtension(ext.NewCarryable(e, tpl.Carry))

	exploded := false
	e.AddExtension(ext.NewTriggerable(e, tpl.Size, tpl.Size, zombieKinds...).OnEntityEntered(func(*ecs.Entity) {
		if exploded {
			return
		}
		exploded = true
		q := gm.Entities()
		for _, enemy := range q.GetNearbyEnemies(ecs.Get[*ext.Positionable](e).Center()) {
			if d, ok := ecs.Find[*ext.Destructible](enemy); ok {
				d.Damage(tpl.Damage)
			}
		}
		q.MarkEntityForRemoval(e, 0)
	}))
	return e
}
