package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
)

// Carryable lets a player pick the owner up as an inventory item. State is
// carried over from and back into the item.
type Carryable struct {
	self     *ecs.Entity
	item     string
	state    ecs.Record
	consumed bool
}

func NewCarryable(self *ecs.Entity, item string) *Carryable {
	return &Carryable{self: self, item: item}
}

func (c *Carryable) Kind() ecs.Kind        { return KindCarryable }
func (c *Carryable) ItemKey() string       { return c.item }
func (c *Carryable) State() ecs.Record     { return c.state }
func (c *Carryable) SetState(s ecs.Record) { c.state = s }

// PickUp moves the owner into the player's inventory and removes it from the
// world. The owner stays live until cleanup, so only the first pickup counts.
func (c *Carryable) PickUp(player *ecs.Entity) bool {
	if c.consumed {
		return false
	}
	inv, ok := ecs.Find[*Inventory](player)
	if !ok || !inv.Add(ecs.Item{ItemType: c.item, State: c.state}) {
		return false
	}
	c.consumed = true
	m := c.self.Managers()
	m.Entities().MarkEntityForRemoval(c.self, 0)
	m.Broadcaster().BroadcastEvent(event.PlayerPickedUpItem{PlayerID: player.ID(), ItemKey: c.item})
	return true
}

func (c *Carryable) Serialize(rec ecs.Record) {
	rec["itemKey"] = c.item
}

func (c *Carryable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Text("itemKey"); ok {
		c.item = v
	}
	return nil
}
