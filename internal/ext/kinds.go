// Package ext holds the capability modules entities are composed from.
package ext

import "github.com/survivethenight/server/internal/core/ecs"

const (
	KindPositionable ecs.Kind = "positionable"
	KindCollidable   ecs.Kind = "collidable"
	KindDestructible ecs.Kind = "destructible"
	KindMovable      ecs.Kind = "movable"
	KindTriggerable  ecs.Kind = "triggerable"
	KindGroupable    ecs.Kind = "groupable"
	KindExpirable    ecs.Kind = "expirable"
	KindIlluminated  ecs.Kind = "illuminated"
	KindConsumable   ecs.Kind = "consumable"
	KindHarvestable  ecs.Kind = "harvestable"
	KindIgnitable    ecs.Kind = "ignitable"
	KindCarryable    ecs.Kind = "carryable"
	KindInteractive  ecs.Kind = "interactive"
	KindInventory    ecs.Kind = "inventory"
)

func init() {
	ecs.RegisterExtension(KindPositionable, func(o *ecs.Entity) ecs.Extension { return NewPositionable(o) })
	ecs.RegisterExtension(KindCollidable, func(o *ecs.Entity) ecs.Extension { return NewCollidable(o) })
	ecs.RegisterExtension(KindDestructible, func(o *ecs.Entity) ecs.Extension { return NewDestructible(o) })
	ecs.RegisterExtension(KindMovable, func(o *ecs.Entity) ecs.Extension { return NewMovable(o) })
	ecs.RegisterExtension(KindTriggerable, func(o *ecs.Entity) ecs.Extension { return NewTriggerable(o, 0, 0) })
	ecs.RegisterExtension(KindGroupable, func(o *ecs.Entity) ecs.Extension { return NewGroupable(o, "") })
	ecs.RegisterExtension(KindExpirable, func(o *ecs.Entity) ecs.Extension { return NewExpirable(o, 0) })
	ecs.RegisterExtension(KindIlluminated, func(o *ecs.Entity) ecs.Extension { return NewIlluminated(o, 0) })
	ecs.RegisterExtension(KindConsumable, func(o *ecs.Entity) ecs.Extension { return NewConsumable(o) })
	ecs.RegisterExtension(KindHarvestable, func(o *ecs.Entity) ecs.Extension { return NewHarvestable(o, "") })
	ecs.RegisterExtension(KindIgnitable, func(o *ecs.Entity) ecs.Extension { return NewIgnitable(o) })
	ecs.RegisterExtension(KindCarryable, func(o *ecs.Entity) ecs.Extension { return NewCarryable(o, "") })
	ecs.RegisterExtension(KindInteractive, func(o *ecs.Entity) ecs.Extension { return NewInteractive(o, "") })
	ecs.RegisterExtension(KindInventory, func(o *ecs.Entity) ecs.Extension { return NewInventory(o) })
}
