package entities

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/ext"
)

// flammable lists the entity types fire spreads to.
var flammable = []ecs.Type{ecs.TypePlayer, ecs.TypeZombie, ecs.TypeFastZombie, ecs.TypeBigZombie}

func (c *catalog) newTree(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypeTree)
	e := c.base(gm, tpl)
	e.AddExtension(ext.NewHarvestable(e, tpl.Harvest))
	return e
}

func (c *catalog) newWall(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypeWall)
	e := c.base(gm, tpl)
	e.AddExtension(ext.NewCarryable(e, tpl.Carry))
	e.AddExtension(ext.NewDestructible(e).SetHealth(tpl.Health).OnDeath(func() {
		gm.Entities().MarkEntityForRemoval(e, 0)
	}))
	return e
}

func (c *catalog) newBoundary(gm ecs.Managers) *ecs.Entity {
	return c.base(gm, c.tbl.MustGet(ecs.TypeBoundary))
}

func (c *catalog) newFire(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypeFire)
	e := c.base(gm, tpl)
	e.AddExtension(ext.NewTriggerable(e, tpl.Size, tpl.Size, flammable...).OnEntityEntered(catchFire))
	e.AddExtension(ext.NewExpirable(e, tpl.Lifetime))
	return e
}

func catchFire(e *ecs.Entity) {
	if !e.HasExtension(ext.KindIgnitable) {
		e.AddExtension(ext.NewIgnitable(e))
	}
}
