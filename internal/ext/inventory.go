package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
)

const MaxInventorySlots = 8

// Inventory is an ordered list of carried items.
type Inventory struct {
	self  *ecs.Entity
	items []ecs.Item
}

func NewInventory(self *ecs.Entity, items ...ecs.Item) *Inventory {
	return &Inventory{self: self, items: items}
}

func (inv *Inventory) Kind() ecs.Kind    { return KindInventory }
func (inv *Inventory) Items() []ecs.Item { return inv.items }
func (inv *Inventory) IsFull() bool      { return len(inv.items) >= MaxInventorySlots }

// Add appends item; false when full.
func (inv *Inventory) Add(item ecs.Item) bool {
	if inv.IsFull() {
		return false
	}
	inv.items = append(inv.items, item)
	return true
}

// At returns the item at idx (0 based).
func (inv *Inventory) At(idx int) (ecs.Item, bool) {
	if idx < 0 || idx >= len(inv.items) {
		return ecs.Item{}, false
	}
	return inv.items[idx], true
}

// RemoveAt takes the item at idx out of the inventory.
func (inv *Inventory) RemoveAt(idx int) (ecs.Item, bool) {
	item, ok := inv.At(idx)
	if !ok {
		return ecs.Item{}, false
	}
	inv.items = append(inv.items[:idx], inv.items[idx+1:]...)
	return item, true
}

func (inv *Inventory) Clear() {
	inv.items = inv.items[:0]
}

func (inv *Inventory) Serialize(rec ecs.Record) {
	items := make([]ecs.Item, len(inv.items))
	copy(items, inv.items)
	rec["inventory"] = items
}

func (inv *Inventory) Deserialize(rec ecs.Record) error {
	switch v := rec["inventory"].(type) {
	case []ecs.Item:
		inv.items = append(inv.items[:0], v...)
	case []any:
		inv.items = inv.items[:0]
		for _, raw := range v {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			item := ecs.Item{}
			item.ItemType, _ = ecs.Record(m).Text("itemType")
			if st, ok := m["state"].(map[string]any); ok {
				item.State = ecs.Record(st)
			}
			inv.items = append(inv.items, item)
		}
	}
	return nil
}
