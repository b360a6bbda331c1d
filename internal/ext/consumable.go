package ext

import "github.com/survivethenight/server/internal/core/ecs"

// ConsumeHandler runs when player uses the item at inventory index idx.
type ConsumeHandler func(player *ecs.Entity, idx int)

type Consumable struct {
	self    *ecs.Entity
	handler ConsumeHandler
}

func NewConsumable(self *ecs.Entity) *Consumable {
	return &Consumable{self: self}
}

func (c *Consumable) Kind() ecs.Kind { return KindConsumable }

func (c *Consumable) OnConsume(fn ConsumeHandler) *Consumable {
	c.handler = fn
	return c
}

func (c *Consumable) Consume(player *ecs.Entity, idx int) {
	if c.handler != nil {
		c.handler(player, idx)
	}
}

func (c *Consumable) Serialize(ecs.Record)         {}
func (c *Consumable) Deserialize(ecs.Record) error { return nil }
