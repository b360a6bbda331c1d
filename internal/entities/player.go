package entities

import (
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
)

const (
	FireCooldown    = 0.4
	DropCooldown    = 1.0
	HarvestCooldown = 1.0
	ConsumeCooldown = 0.5
	HarvestRadius   = 10.0
)

// Input is the latest control state sent by a client. InventoryItem is a
// 1-based slot index; zero selects nothing.
type Input struct {
	Facing        geom.Direction `json:"facing"`
	InventoryItem int            `json:"inventoryItem"`
	DX            float64        `json:"dx"`
	DY            float64        `json:"dy"`
	Harvest       bool           `json:"harvest"`
	Fire          bool           `json:"fire"`
	Drop          bool           `json:"drop"`
	Consume       bool           `json:"consume"`
}

// Player turns client input into movement, attacks and inventory actions.
type Player struct {
	self *ecs.Entity
	tpl  *data.EntityTemplate
	tbl  *data.EntityTable
	log  *zap.Logger

	input      Input
	activeItem *ecs.Item

	fireCooldown    float64
	dropCooldown    float64
	harvestCooldown float64
	consumeCooldown float64
}

func (c *catalog) newPlayer(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypePlayer)
	e := c.base(gm, tpl)

	starter := make([]ecs.Item, 0, len(c.tbl.StarterInventory()))
	for _, key := range c.tbl.StarterInventory() {
		starter = append(starter, ecs.Item{ItemType: key})
	}

	e.AddExtension(ext.NewMovable(e))
	e.AddExtension(ext.NewInventory(e, starter...))
	e.AddExtension(ext.NewDestructible(e).SetHealth(tpl.Health).
		OnDamaged(func(float64) {
			gm.Broadcaster().BroadcastEvent(event.PlayerHurt{PlayerID: e.ID()})
		}).
		OnDeath(func() {
			ecs.Get[*ext.Movable](e).SetVelocity(geom.Vector2{})
			gm.Broadcaster().BroadcastEvent(event.PlayerDeath{PlayerID: e.ID()})
		}))
	e.AddExtension(&Player{
		self:  e,
		tpl:   tpl,
		tbl:   c.tbl,
		log:   c.log,
		input: Input{Facing: geom.DirectionRight, InventoryItem: 1},
	})
	return e
}

func (p *Player) Kind() ecs.Kind { return KindPlayer }

func (p *Player) SetInput(in Input) { p.input = in }
func (p *Player) Input() Input      { return p.input }

// ActiveItem returns the item in the selected slot, if any.
func (p *Player) ActiveItem() (ecs.Item, bool) {
	if p.activeItem == nil {
		return ecs.Item{}, false
	}
	return *p.activeItem, true
}

func (p *Player) Update(dt float64) {
	if d, ok := ecs.Find[*ext.Destructible](p.self); ok && d.IsDead() {
		return
	}
	p.selectActiveItem()
	p.handleAttack(dt)
	p.handleMovement(dt)
	p.handleInteract(dt)
	p.handleDrop(dt)
	p.handleConsume(dt)
}

func (p *Player) selectActiveItem() {
	p.activeItem = nil
	if p.input.InventoryItem <= 0 {
		return
	}
	if item, ok := ecs.Get[*ext.Inventory](p.self).At(p.input.InventoryItem - 1); ok {
		p.activeItem = &item
	}
}

func (p *Player) handleAttack(dt float64) {
	p.fireCooldown -= dt
	if !p.input.Fire || p.fireCooldown > 0 || p.activeItem == nil || p.tbl == nil {
		return
	}
	weapon := p.tbl.Get(ecs.Type(p.activeItem.ItemType))
	if weapon == nil {
		return
	}

	q := p.self.Managers().Entities()
	center := ecs.Get[*ext.Positionable](p.self).Center()
	dir := p.input.Facing.Vector()

	switch {
	case weapon.Projectiles > 0:
		offset := float64(weapon.Projectiles-1) / 2
		for i := 0; i < weapon.Projectiles; i++ {
			b := q.CreateEntity(ecs.TypeBullet)
			if b == nil {
				return
			}
			ecs.Get[*ext.Positionable](b).SetPosition(center)
			ecs.Get[*Bullet](b).Launch(p.self.ID(), dir.Rotate((float64(i)-offset)*weapon.Spread))
			q.AddEntity(b)
		}
	case weapon.Damage > 0 && weapon.AttackRange > 0:
		reach := weapon.AttackRange
		hit := geom.Rectangle{
			Position: center.Add(dir.Mul(reach / 2)).Sub(geom.Vec(reach/2, reach/2)),
			Size:     geom.Vec(reach, reach),
		}
		for _, target := range q.GetNearbyIntersectingDestructibleEntities(p.self, hit) {
			if isEnemy(target) {
				ecs.Get[*ext.Destructible](target).Damage(weapon.Damage)
				break
			}
		}
	default:
		return
	}

	p.fireCooldown = FireCooldown
	p.self.Managers().Broadcaster().BroadcastEvent(event.PlayerAttacked{
		PlayerID:  p.self.ID(),
		WeaponKey: p.activeItem.ItemType,
	})
}

func (p *Player) handleMovement(dt float64) {
	mov := ecs.Get[*ext.Movable](p.self)
	v := geom.Vec(p.input.DX, p.input.DY)
	if v.IsZero() {
		mov.SetVelocity(geom.Vector2{})
		return
	}
	mov.SetVelocity(v.Normalized().Mul(p.tpl.Speed))
	step(p.self, mov.Velocity(), dt, ecs.TypePlayer)
}

// handleInteract harvests or picks up the first eligible entity in reach.
func (p *Player) handleInteract(dt float64) {
	p.harvestCooldown -= dt
	if !p.input.Harvest || p.harvestCooldown > 0 {
		return
	}
	p.harvestCooldown = HarvestCooldown

	center := ecs.Get[*ext.Positionable](p.self).Center()
	for _, e := range p.self.Managers().Entities().GetNearbyEntities(center, HarvestRadius) {
		if e == p.self {
			continue
		}
		if h, ok := ecs.Find[*ext.Harvestable](e); ok && h.Harvest(p.self) {
			return
		}
		if c, ok := ecs.Find[*ext.Carryable](e); ok && c.PickUp(p.self) {
			return
		}
	}
}

func (p *Player) handleDrop(dt float64) {
	p.dropCooldown -= dt
	if !p.input.Drop || p.dropCooldown > 0 || p.input.InventoryItem <= 0 {
		return
	}
	p.dropCooldown = DropCooldown

	idx := p.input.InventoryItem - 1
	inv := ecs.Get[*ext.Inventory](p.self)
	item, ok := inv.At(idx)
	if !ok {
		return
	}

	q := p.self.Managers().Entities()
	dropped, err := q.CreateEntityFromItem(item)
	if err != nil {
		p.log.Warn("drop failed", zap.String("player", p.self.ID()), zap.Error(err))
		return
	}
	inv.RemoveAt(idx)

	if pos, ok := ecs.Find[*ext.Positionable](dropped); ok {
		pos.SetPosition(ecs.Get[*ext.Positionable](p.self).Center())
	}
	q.AddEntity(dropped)
	p.activeItem = nil

	p.self.Managers().Broadcaster().BroadcastEvent(event.PlayerDroppedItem{
		PlayerID: p.self.ID(),
		ItemKey:  item.ItemType,
	})
}

// handleConsume uses the selected item when its entity type is consumable.
func (p *Player) handleConsume(dt float64) {
	p.consumeCooldown -= dt
	if !p.input.Consume || p.consumeCooldown > 0 || p.input.InventoryItem <= 0 {
		return
	}
	p.consumeCooldown = ConsumeCooldown

	idx := p.input.InventoryItem - 1
	item, ok := ecs.Get[*ext.Inventory](p.self).At(idx)
	if !ok {
		return
	}
	q := p.self.Managers().Entities()
	if !q.HasRegisteredItem(item.ItemType) {
		return
	}
	proto, err := q.CreateEntityFromItem(item)
	if err != nil {
		return
	}
	if c, ok := ecs.Find[*ext.Consumable](proto); ok {
		c.Consume(p.self, idx)
	}
}

func (p *Player) Serialize(rec ecs.Record) {
	rec["facing"] = int(p.input.Facing)
	if p.activeItem != nil {
		rec["activeItem"] = p.activeItem.ItemType
	} else {
		rec["activeItem"] = nil
	}
}

func (p *Player) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Float("facing"); ok {
		p.input.Facing = geom.Direction(v)
	}
	if v, ok := rec.Text("activeItem"); ok {
		p.activeItem = &ecs.Item{ItemType: v}
	} else {
		p.activeItem = nil
	}
	return nil
}

func isEnemy(e *ecs.Entity) bool {
	g, ok := ecs.Find[*ext.Groupable](e)
	return ok && g.Group() == ext.GroupEnemy
}

// step integrates vel one axis at a time and undoes an axis that ends inside
// a collidable not listed in ignore.
func step(self *ecs.Entity, vel geom.Vector2, dt float64, ignore ...ecs.Type) {
	pos := ecs.Get[*ext.Positionable](self)
	q := self.Managers().Entities()

	prev := pos.Position()
	pos.SetPosition(geom.Vec(prev.X+vel.X*dt, prev.Y))
	if q.GetIntersectingCollidableEntity(self, ignore...) != nil {
		pos.SetPosition(prev)
	}

	prev = pos.Position()
	pos.SetPosition(geom.Vec(prev.X, prev.Y+vel.Y*dt))
	if q.GetIntersectingCollidableEntity(self, ignore...) != nil {
		pos.SetPosition(prev)
	}
}
