package entities

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
)

// Bullet flies in a straight line, damages the first enemy it overlaps and
// stops at anything solid.
type Bullet struct {
	self      *ecs.Entity
	tpl       *data.EntityTemplate
	shooterID string
	direction geom.Vector2
}

func (c *catalog) newBullet(gm ecs.Managers) *ecs.Entity {
	tpl := c.tbl.MustGet(ecs.TypeBullet)
	e := c.base(gm, tpl)
	// Disabled so other entities never collide with bullets; the bullet
	// itself still queries with its hitbox.
	e.AddExtension(ext.NewCollidable(e).SetEnabled(false))
	e.AddExtension(ext.NewMovable(e))
	e.AddExtension(ext.NewExpirable(e, tpl.Lifetime))
	e.AddExtension(&Bullet{self: e, tpl: tpl, direction: geom.DirectionRight.Vector()})
	return e
}

func (b *Bullet) Kind() ecs.Kind { return KindBullet }

// Launch sets the shooter and travel direction.
func (b *Bullet) Launch(shooterID string, dir geom.Vector2) {
	b.shooterID = shooterID
	b.direction = dir.Normalized()
	ecs.Get[*ext.Movable](b.self).SetVelocity(b.direction.Mul(b.tpl.Speed))
}

func (b *Bullet) ShooterID() string { return b.shooterID }

func (b *Bullet) Update(dt float64) {
	pos := ecs.Get[*ext.Positionable](b.self)
	pos.SetPosition(pos.Position().Add(ecs.Get[*ext.Movable](b.self).Velocity().Mul(dt)))

	q := b.self.Managers().Entities()
	for _, target := range q.GetNearbyIntersectingDestructibleEntities(b.self, pos.Rect()) {
		if isEnemy(target) {
			ecs.Get[*ext.Destructible](target).Damage(b.tpl.Damage)
			q.MarkEntityForRemoval(b.self, 0)
			return
		}
	}
	if hit := q.GetIntersectingCollidableEntity(b.self, ecs.TypePlayer, ecs.TypeBullet); hit != nil && !isEnemy(hit) {
		q.MarkEntityForRemoval(b.self, 0)
	}
}

func (b *Bullet) Serialize(rec ecs.Record) {
	rec["direction"] = b.direction
}

func (b *Bullet) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Vector("direction"); ok {
		b.direction = v
	}
	return nil
}
