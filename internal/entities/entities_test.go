package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
	"github.com/survivethenight/server/internal/world"
)

func TestRegisterInstallsItemManifest(t *testing.T) {
	s := newSim(t)
	for _, key := range []string{
		"gasoline", "bandage", "torch", "cloth", "wood", "wall", "spikes", "grenade",
		"fire_extinguisher", "knife", "shotgun", "pistol", "pistol_ammo", "shotgun_ammo", "landmine",
	} {
		assert.True(t, s.m.HasRegisteredItem(key), key)
	}

	tree, err := s.m.CreateEntityFromItem(ecs.Item{ItemType: "wood"})
	require.NoError(t, err)
	assert.Equal(t, ecs.TypeTree, tree.Type())

	pistol, err := s.m.CreateEntityFromItem(ecs.Item{ItemType: "pistol", State: ecs.Record{"ammo": 3.0}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, ecs.Get[*ext.Carryable](pistol).State()["ammo"])

	_, err = s.m.CreateEntityFromItem(ecs.Item{ItemType: "nope"})
	assert.ErrorIs(t, err, world.ErrUnknownItemType)
}

func TestPlayerMovementRollsBackOnCollision(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*Player](p).SetInput(Input{Facing: geom.DirectionRight, DX: 1})

	s.tick(0.1)
	assert.InDelta(t, 56, position(p).X, 1e-9)

	s.spawn(t, ecs.TypeWall, 72, 50)
	s.tick(0.1)
	assert.InDelta(t, 56, position(p).X, 1e-9)
	assert.Equal(t, 50.0, position(p).Y)
}

func TestPlayersDoNotBlockEachOther(t *testing.T) {
	s := newSim(t)
	a := s.spawn(t, ecs.TypePlayer, 50, 50)
	s.spawn(t, ecs.TypePlayer, 56, 50)
	ecs.Get[*Player](a).SetInput(Input{DX: 1})

	s.tick(0.1)
	assert.InDelta(t, 56, position(a).X, 1e-9)
}

func TestPistolFiresWithCooldown(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*Player](p).SetInput(Input{Facing: geom.DirectionRight, InventoryItem: 2, Fire: true})

	s.tick(0.25)
	assert.Equal(t, 1, s.count(ecs.TypeBullet))
	s.tick(0.25)
	assert.Equal(t, 1, s.count(ecs.TypeBullet))
	s.tick(0.25)
	assert.Equal(t, 2, s.count(ecs.TypeBullet))

	attacks := s.eventsOf(event.TypePlayerAttacked)
	require.Len(t, attacks, 2)
	assert.Equal(t, event.PlayerAttacked{PlayerID: p.ID(), WeaponKey: "pistol"}, attacks[0])
}

func TestShotgunFiresSpread(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*Player](p).SetInput(Input{Facing: geom.DirectionRight, InventoryItem: 3, Fire: true})

	s.tick(0.1)
	assert.Equal(t, 3, s.count(ecs.TypeBullet))
}

func TestKnifeHitsAdjacentZombie(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	z := s.spawn(t, ecs.TypeZombie, 62, 50)
	ecs.Get[*Player](p).SetInput(Input{Facing: geom.DirectionRight, InventoryItem: 1, Fire: true})

	s.tick(0.1)
	assert.Equal(t, 2.0, health(z))
	assert.NotEmpty(t, s.eventsOf(event.TypeZombieHurt))
	assert.Len(t, s.eventsOf(event.TypePlayerAttacked), 1)
}

func TestZombieChasesClosestAlivePlayer(t *testing.T) {
	s := newSim(t)
	s.spawn(t, ecs.TypePlayer, 150, 100)
	z := s.spawn(t, ecs.TypeZombie, 20, 100)

	s.tick(0.1)
	assert.InDelta(t, 23.5, position(z).X, 1e-9)
	assert.InDelta(t, 100, position(z).Y, 1e-9)
}

func TestZombieAttackRespectsCooldown(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	s.spawn(t, ecs.TypeZombie, 60, 50)

	s.tick(0.1)
	assert.Equal(t, 2.0, health(p))
	s.tick(0.1)
	assert.Equal(t, 2.0, health(p))
	assert.Len(t, s.eventsOf(event.TypePlayerHurt), 1)
}

func TestPlayerDeathBroadcastOnce(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	d := ecs.Get[*ext.Destructible](p)
	d.Kill()
	d.Damage(1)

	assert.Len(t, s.eventsOf(event.TypePlayerDeath), 1)
	assert.True(t, world.IsDead(p))
}

func TestZombieDeathDelaysRemoval(t *testing.T) {
	s := newSim(t)
	z := s.spawn(t, ecs.TypeZombie, 50, 50)
	ecs.Get[*ext.Destructible](z).Kill()

	assert.Len(t, s.eventsOf(event.TypeZombieDeath), 1)
	assert.False(t, ecs.Get[*ext.Collidable](z).IsEnabled())

	s.tick(0.1)
	assert.NotNil(t, s.m.GetEntityByID(z.ID()))

	s.advance(2 * time.Second)
	s.tick(0.1)
	assert.Nil(t, s.m.GetEntityByID(z.ID()))
}

func TestHarvestTreeYieldsWood(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	tree := s.spawn(t, ecs.TypeTree, 60, 50)
	ecs.Get[*Player](p).SetInput(Input{Harvest: true})

	s.tick(0.1)
	items := ecs.Get[*ext.Inventory](p).Items()
	require.Len(t, items, 5)
	assert.Equal(t, "wood", items[4].ItemType)
	assert.Nil(t, s.m.GetEntityByID(tree.ID()))
	assert.Equal(t, []event.Event{event.PlayerPickedUpItem{PlayerID: p.ID(), ItemKey: "wood"}},
		s.eventsOf(event.TypePlayerPickedUpItem))
}

func TestTreeHarvestedOncePerTick(t *testing.T) {
	s := newSim(t)
	a := s.spawn(t, ecs.TypePlayer, 50, 50)
	b := s.spawn(t, ecs.TypePlayer, 50, 50)
	s.spawn(t, ecs.TypeTree, 60, 50)
	ecs.Get[*Player](a).SetInput(Input{Harvest: true})
	ecs.Get[*Player](b).SetInput(Input{Harvest: true})

	s.tick(0.1)
	gained := len(ecs.Get[*ext.Inventory](a).Items()) + len(ecs.Get[*ext.Inventory](b).Items()) - 8
	assert.Equal(t, 1, gained)
	assert.Len(t, s.eventsOf(event.TypePlayerPickedUpItem), 1)
	assert.Equal(t, 0, s.count(ecs.TypeTree))
}

func TestCarryablePickedUpOncePerTick(t *testing.T) {
	s := newSim(t)
	a := s.spawn(t, ecs.TypePlayer, 50, 50)
	b := s.spawn(t, ecs.TypePlayer, 50, 50)
	pistol := s.spawn(t, ecs.TypePistol, 58, 50)

	c := ecs.Get[*ext.Carryable](pistol)
	assert.True(t, c.PickUp(a))
	assert.False(t, c.PickUp(b))
	assert.Len(t, ecs.Get[*ext.Inventory](b).Items(), 4)
}

func TestDropCreatesEntityFromItem(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*Player](p).SetInput(Input{InventoryItem: 4, Drop: true})

	s.tick(0.1)
	assert.Len(t, ecs.Get[*ext.Inventory](p).Items(), 3)
	require.Equal(t, 1, s.count(ecs.TypeTree))
	for _, e := range s.m.Entities() {
		if e.Type() == ecs.TypeTree {
			assert.Equal(t, geom.Vec(58, 58), position(e))
		}
	}
	assert.Equal(t, []event.Event{event.PlayerDroppedItem{PlayerID: p.ID(), ItemKey: "wood"}},
		s.eventsOf(event.TypePlayerDroppedItem))
}

func TestDropUnknownItemKeepsIt(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*ext.Inventory](p).Add(ecs.Item{ItemType: "mystery"})
	ecs.Get[*Player](p).SetInput(Input{InventoryItem: 5, Drop: true})

	s.tick(0.1)
	assert.Len(t, ecs.Get[*ext.Inventory](p).Items(), 5)
	assert.Empty(t, s.eventsOf(event.TypePlayerDroppedItem))
}

func TestBandageHealsAndIsUsedUp(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*ext.Destructible](p).Damage(2)
	inv := ecs.Get[*ext.Inventory](p)
	inv.Add(ecs.Item{ItemType: "bandage"})
	ecs.Get[*Player](p).SetInput(Input{InventoryItem: 5, Consume: true})

	s.tick(0.1)
	assert.Equal(t, 3.0, health(p))
	assert.Len(t, inv.Items(), 4)
}

func TestFireIgnitesZombie(t *testing.T) {
	s := newSim(t)
	s.spawn(t, ecs.TypeFire, 50, 50)
	z := s.spawn(t, ecs.TypeZombie, 52, 52)

	s.tick(0.1)
	assert.True(t, z.HasExtension(ext.KindIgnitable))
}

func TestBulletDamagesEnemyAndDisappears(t *testing.T) {
	s := newSim(t)
	z := s.spawn(t, ecs.TypeZombie, 50, 46)
	b := s.spawn(t, ecs.TypeBullet, 50, 50)
	ecs.Get[*Bullet](b).Launch("shooter", geom.Vec(1, 0))

	s.tick(0.01)
	assert.Equal(t, 2.0, health(z))
	assert.Nil(t, s.m.GetEntityByID(b.ID()))
}

func TestLandmineHurtsNearbyEnemies(t *testing.T) {
	s := newSim(t)
	mine := s.spawn(t, ecs.TypeLandmine, 50, 50)
	near := s.spawn(t, ecs.TypeZombie, 52, 52)
	far := s.spawn(t, ecs.TypeBigZombie, 80, 50)

	s.tick(0.1)
	assert.True(t, world.IsDead(near))
	assert.Equal(t, 5.0, health(far))
	assert.Nil(t, s.m.GetEntityByID(mine.ID()))
}

func TestPlayerRecordCarriesActiveItem(t *testing.T) {
	s := newSim(t)
	p := s.spawn(t, ecs.TypePlayer, 50, 50)
	ecs.Get[*Player](p).SetInput(Input{InventoryItem: 2})
	s.tick(0.1)

	rec := p.Serialize()
	assert.Equal(t, "pistol", rec["activeItem"])

	back, err := ecs.Deserialize(rec, nil)
	require.NoError(t, err)
	item, ok := ecs.Get[*Player](back).ActiveItem()
	require.True(t, ok)
	assert.Equal(t, "pistol", item.ItemType)
}
