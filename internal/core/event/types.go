package event

// Type is the wire name of a server-sent event.
type Type string

const (
	TypeGameState          Type = "gameState"
	TypeGameOver           Type = "gameOver"
	TypePlayerDeath        Type = "playerDeath"
	TypePlayerAttacked     Type = "playerAttacked"
	TypePlayerHurt         Type = "playerHurt"
	TypeZombieDeath        Type = "zombieDeath"
	TypeZombieHurt         Type = "zombieHurt"
	TypePlayerDroppedItem  Type = "playerDroppedItem"
	TypePlayerPickedUpItem Type = "playerPickedUpItem"
	TypeMap                Type = "map"
	TypeYourID             Type = "yourId"
)

// Event is a one-shot message for clients. Payload is JSON-encodable and
// carries only identifying data.
type Event interface {
	Type() Type
	Payload() any
}

type GameOver struct{}

func (GameOver) Type() Type   { return TypeGameOver }
func (GameOver) Payload() any { return struct{}{} }

type PlayerDeath struct {
	PlayerID string `json:"playerId"`
}

func (PlayerDeath) Type() Type     { return TypePlayerDeath }
func (e PlayerDeath) Payload() any { return e }

type PlayerAttacked struct {
	PlayerID  string `json:"playerId"`
	WeaponKey string `json:"weaponKey"`
}

func (PlayerAttacked) Type() Type     { return TypePlayerAttacked }
func (e PlayerAttacked) Payload() any { return e }

type PlayerHurt struct {
	PlayerID string `json:"playerId"`
}

func (PlayerHurt) Type() Type     { return TypePlayerHurt }
func (e PlayerHurt) Payload() any { return e }

type ZombieDeath struct {
	ZombieID string `json:"zombieId"`
}

func (ZombieDeath) Type() Type     { return TypeZombieDeath }
func (e ZombieDeath) Payload() any { return e }

type ZombieHurt struct {
	ZombieID string `json:"zombieId"`
}

func (ZombieHurt) Type() Type     { return TypeZombieHurt }
func (e ZombieHurt) Payload() any { return e }

type PlayerDroppedItem struct {
	PlayerID string `json:"playerId"`
	ItemKey  string `json:"itemKey"`
}

func (PlayerDroppedItem) Type() Type     { return TypePlayerDroppedItem }
func (e PlayerDroppedItem) Payload() any { return e }

type PlayerPickedUpItem struct {
	PlayerID string `json:"playerId"`
	ItemKey  string `json:"itemKey"`
}

func (PlayerPickedUpItem) Type() Type     { return TypePlayerPickedUpItem }
func (e PlayerPickedUpItem) Payload() any { return e }

// Map carries the tile grid to a newly joined client or after regeneration.
type Map struct {
	Tiles    [][]int `json:"tiles"`
	TileSize int     `json:"tileSize"`
}

func (Map) Type() Type     { return TypeMap }
func (e Map) Payload() any { return e }

type YourID struct {
	PlayerID string `json:"playerId"`
}

func (YourID) Type() Type     { return TypeYourID }
func (e YourID) Payload() any { return e }
