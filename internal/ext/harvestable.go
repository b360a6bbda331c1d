package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
)

// Harvestable yields an inventory item and disappears when harvested.
type Harvestable struct {
	self     *ecs.Entity
	item     string
	consumed bool
}

func NewHarvestable(self *ecs.Entity, item string) *Harvestable {
	return &Harvestable{self: self, item: item}
}

func (h *Harvestable) Kind() ecs.Kind { return KindHarvestable }
func (h *Harvestable) Item() string   { return h.item }

// Harvest moves the yield into the player's inventory. It reports false when
// the player cannot carry it or someone else already took it this tick.
func (h *Harvestable) Harvest(player *ecs.Entity) bool {
	if h.consumed {
		return false
	}
	inv, ok := ecs.Find[*Inventory](player)
	if !ok || !inv.Add(ecs.Item{ItemType: h.item}) {
		return false
	}
	h.consumed = true
	m := h.self.Managers()
	m.Entities().MarkEntityForRemoval(h.self, 0)
	m.Broadcaster().BroadcastEvent(event.PlayerPickedUpItem{PlayerID: player.ID(), ItemKey: h.item})
	return true
}

func (h *Harvestable) Serialize(rec ecs.Record) {
	rec["harvestItem"] = h.item
}

func (h *Harvestable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Text("harvestItem"); ok {
		h.item = v
	}
	return nil
}
