package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/geom"
)

// Destructible owns health. onDamaged runs for every hit that lands,
// onDeath once when health reaches zero.
type Destructible struct {
	self      *ecs.Entity
	health    float64
	maxHealth float64
	onDamaged func(amount float64)
	onDeath   func()
}

func NewDestructible(self *ecs.Entity) *Destructible {
	return &Destructible{self: self}
}

func (d *Destructible) Kind() ecs.Kind { return KindDestructible }

// SetHealth sets both current and maximum health.
func (d *Destructible) SetHealth(h float64) *Destructible {
	d.health = h
	d.maxHealth = h
	return d
}

func (d *Destructible) OnDamaged(fn func(amount float64)) *Destructible {
	d.onDamaged = fn
	return d
}

func (d *Destructible) OnDeath(fn func()) *Destructible {
	d.onDeath = fn
	return d
}

func (d *Destructible) Health() float64    { return d.health }
func (d *Destructible) MaxHealth() float64 { return d.maxHealth }
func (d *Destructible) IsDead() bool       { return d.health <= 0 }

// Damage subtracts amount. Dead entities take no further damage.
func (d *Destructible) Damage(amount float64) {
	if d.IsDead() || amount <= 0 {
		return
	}
	d.health -= amount
	if d.health < 0 {
		d.health = 0
	}
	if d.onDamaged != nil {
		d.onDamaged(amount)
	}
	if d.IsDead() && d.onDeath != nil {
		d.onDeath()
	}
}

// Heal restores health up to the maximum. Dead entities cannot be healed.
func (d *Destructible) Heal(amount float64) {
	if d.IsDead() {
		return
	}
	d.health += amount
	if d.health > d.maxHealth {
		d.health = d.maxHealth
	}
}

// Kill drops health to zero, running the death hook once.
func (d *Destructible) Kill() {
	d.Damage(d.health)
}

// DamageBox is the area that can be hit: the collision box when the owner is
// collidable, otherwise its footprint.
func (d *Destructible) DamageBox() geom.Rectangle {
	if c, ok := ecs.Find[*Collidable](d.self); ok {
		return c.HitBox()
	}
	return ecs.Get[*Positionable](d.self).Rect()
}

func (d *Destructible) Serialize(rec ecs.Record) {
	rec["health"] = d.health
	rec["maxHealth"] = d.maxHealth
}

func (d *Destructible) Deserialize(rec ecs.Record) error {
	h, err := rec.RequireFloat("health")
	if err != nil {
		return err
	}
	d.health = h
	if m, ok := rec.Float("maxHealth"); ok {
		d.maxHealth = m
	}
	return nil
}
