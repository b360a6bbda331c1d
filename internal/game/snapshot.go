package game

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
)

// Snapshot is the per-tick game state sent to every client.
type Snapshot struct {
	Entities         []ecs.Record `json:"entities"`
	RemovedEntityIDs []string     `json:"removedEntityIds"`
	DayNumber        int          `json:"dayNumber"`
	UntilNextCycle   float64      `json:"untilNextCycle"`
	IsDay            bool         `json:"isDay"`
}

func (Snapshot) Type() event.Type { return event.TypeGameState }
func (s Snapshot) Payload() any   { return s }
