// Package entities assembles the concrete entity types from extensions and
// the per-type controllers that drive them.
package entities

import (
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/world"
)

const (
	KindPlayer ecs.Kind = "player"
	KindZombie ecs.Kind = "zombie"
	KindBullet ecs.Kind = "bullet"
)

func init() {
	ecs.RegisterExtension(KindPlayer, func(o *ecs.Entity) ecs.Extension { return &Player{self: o} })
	ecs.RegisterExtension(KindZombie, func(o *ecs.Entity) ecs.Extension { return &Zombie{self: o} })
	ecs.RegisterExtension(KindBullet, func(o *ecs.Entity) ecs.Extension { return &Bullet{self: o} })
}

// catalog builds entities from the template table.
type catalog struct {
	tbl *data.EntityTable
	log *zap.Logger
}

// Register installs a constructor for every entity type that has a template
// and the item manifest mapping inventory keys to droppable entities.
func Register(m *world.Manager, tbl *data.EntityTable, log *zap.Logger) {
	c := &catalog{tbl: tbl, log: log}

	ctors := map[ecs.Type]world.Constructor{
		ecs.TypePlayer:           c.newPlayer,
		ecs.TypeZombie:           c.zombieOf(ecs.TypeZombie),
		ecs.TypeFastZombie:       c.zombieOf(ecs.TypeFastZombie),
		ecs.TypeBigZombie:        c.zombieOf(ecs.TypeBigZombie),
		ecs.TypeBullet:           c.newBullet,
		ecs.TypeTree:             c.newTree,
		ecs.TypeWall:             c.newWall,
		ecs.TypeBoundary:         c.newBoundary,
		ecs.TypeFire:             c.newFire,
		ecs.TypeSpikes:           c.newSpikes,
		ecs.TypeLandmine:         c.newLandmine,
		ecs.TypeTorch:            c.itemOf(ecs.TypeTorch),
		ecs.TypeBandage:          c.itemOf(ecs.TypeBandage),
		ecs.TypeCloth:            c.itemOf(ecs.TypeCloth),
		ecs.TypeGasoline:         c.itemOf(ecs.TypeGasoline),
		ecs.TypeGrenade:          c.itemOf(ecs.TypeGrenade),
		ecs.TypeFireExtinguisher: c.itemOf(ecs.TypeFireExtinguisher),
		ecs.TypeKnife:            c.itemOf(ecs.TypeKnife),
		ecs.TypePistol:           c.itemOf(ecs.TypePistol),
		ecs.TypeShotgun:          c.itemOf(ecs.TypeShotgun),
		ecs.TypePistolAmmo:       c.itemOf(ecs.TypePistolAmmo),
		ecs.TypeShotgunAmmo:      c.itemOf(ecs.TypeShotgunAmmo),
	}

	for _, t := range ecs.Types() {
		ctor, ok := ctors[t]
		if !ok {
			continue
		}
		if tbl.Get(t) == nil {
			log.Warn("entity type has no template, not registered", zap.String("type", string(t)))
			continue
		}
		m.RegisterEntityType(t, ctor)
	}

	for _, it := range tbl.Items() {
		ctor, ok := ctors[it.Entity]
		if !ok || tbl.Get(it.Entity) == nil {
			continue
		}
		m.RegisterItem(it.Key, func(gm ecs.Managers, state ecs.Record) *ecs.Entity {
			e := ctor(gm)
			if carry, ok := ecs.Find[*ext.Carryable](e); ok && state != nil {
				carry.SetState(state)
			}
			return e
		})
	}
}

// base attaches the extensions every templated entity shares.
func (c *catalog) base(gm ecs.Managers, tpl *data.EntityTemplate) *ecs.Entity {
	e := ecs.New(gm, tpl.Type)
	e.AddExtension(ext.NewPositionable(e).SetSize(tpl.Size))
	if tpl.Collidable {
		e.AddExtension(ext.NewCollidable(e).SetOffset(tpl.HitboxOffset))
	}
	if tpl.Group != "" {
		e.AddExtension(ext.NewGroupable(e, ext.Group(tpl.Group)))
	}
	if tpl.DisplayName != "" {
		e.AddExtension(ext.NewInteractive(e, tpl.DisplayName))
	}
	if tpl.Illumination > 0 {
		e.AddExtension(ext.NewIlluminated(e, tpl.Illumination))
	}
	return e
}
