package ecs

// Type is the immutable kind tag of an entity. The set is closed: every
// value the server creates is listed here.
type Type string

const (
	TypePlayer           Type = "player"
	TypeZombie           Type = "zombie"
	TypeBigZombie        Type = "big_zombie"
	TypeFastZombie       Type = "fast_zombie"
	TypeTree             Type = "tree"
	TypeBullet           Type = "bullet"
	TypeWall             Type = "wall"
	TypeBoundary         Type = "boundary"
	TypeKnife            Type = "knife"
	TypePistol           Type = "pistol"
	TypeShotgun          Type = "shotgun"
	TypePistolAmmo       Type = "pistol_ammo"
	TypeShotgunAmmo      Type = "shotgun_ammo"
	TypeBandage          Type = "bandage"
	TypeCloth            Type = "cloth"
	TypeSpikes           Type = "spikes"
	TypeFire             Type = "fire"
	TypeTorch            Type = "torch"
	TypeGasoline         Type = "gasoline"
	TypeLandmine         Type = "landmine"
	TypeGrenade          Type = "grenade"
	TypeFireExtinguisher Type = "fire_extinguisher"
)

var allTypes = []Type{
	TypePlayer, TypeZombie, TypeBigZombie, TypeFastZombie, TypeTree, TypeBullet,
	TypeWall, TypeBoundary, TypeKnife, TypePistol, TypeShotgun, TypePistolAmmo,
	TypeShotgunAmmo, TypeBandage, TypeCloth, TypeSpikes, TypeFire, TypeTorch,
	TypeGasoline, TypeLandmine, TypeGrenade, TypeFireExtinguisher,
}

// Types returns every known entity type.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

func (t Type) Valid() bool {
	for _, k := range allTypes {
		if k == t {
			return true
		}
	}
	return false
}

// IsZombie reports whether t is one of the enemy kinds spawned at night.
func (t Type) IsZombie() bool {
	return t == TypeZombie || t == TypeBigZombie || t == TypeFastZombie
}

// ContainsType reports whether t is in list.
func ContainsType(list []Type, t Type) bool {
	for _, k := range list {
		if k == t {
			return true
		}
	}
	return false
}

// Item is an inventory entry. State carries item-specific data (ammo count,
// fuel) that survives a drop/pickup round trip.
type Item struct {
	ItemType string `json:"itemType"`
	State    Record `json:"state,omitempty"`
}
