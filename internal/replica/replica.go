// Package replica is the client's copy of the world: it reconciles server
// snapshots into entities and eases render positions toward them.
package replica

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	_ "github.com/survivethenight/server/internal/entities" // controller extensions
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/game"
	"github.com/survivethenight/server/internal/geom"
)

// LerpFactor is the fraction of the remaining distance a render position
// covers per frame.
const LerpFactor = 0.1

// State holds everything a client knows about the game.
type State struct {
	entities map[string]*ecs.Entity
	order    []string
	render   map[string]geom.Vector2

	PlayerID       string
	DayNumber      int
	UntilNextCycle float64
	IsDay          bool
	GameOver       bool
	Map            event.Map

	log *zap.Logger
}

func New(log *zap.Logger) *State {
	return &State{
		entities: make(map[string]*ecs.Entity),
		render:   make(map[string]geom.Vector2),
		IsDay:    true,
		log:      log,
	}
}

type frame struct {
	Type    event.Type      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HandleFrame applies one server frame. Frames that only drive sound or UI
// are accepted and ignored.
func (s *State) HandleFrame(data []byte) error {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	switch f.Type {
	case event.TypeGameState:
		var snap game.Snapshot
		if err := json.Unmarshal(f.Payload, &snap); err != nil {
			return fmt.Errorf("decode game state: %w", err)
		}
		s.ApplySnapshot(snap)
	case event.TypeYourID:
		var msg event.YourID
		if err := json.Unmarshal(f.Payload, &msg); err != nil {
			return fmt.Errorf("decode your id: %w", err)
		}
		s.PlayerID = msg.PlayerID
	case event.TypeMap:
		var m event.Map
		if err := json.Unmarshal(f.Payload, &m); err != nil {
			return fmt.Errorf("decode map: %w", err)
		}
		s.Map = m
		s.GameOver = false
	case event.TypeGameOver:
		s.GameOver = true
	}
	return nil
}

// ApplySnapshot creates or refreshes every listed entity and drops the
// removed ones. A record that fails to decode is skipped; the rest of the
// snapshot still applies.
func (s *State) ApplySnapshot(snap game.Snapshot) {
	for _, rec := range snap.Entities {
		id, ok := rec.Text("id")
		if !ok {
			s.log.Warn("snapshot record without id")
			continue
		}
		if e, ok := s.entities[id]; ok {
			if err := e.ApplyRecord(rec); err != nil {
				s.log.Warn("apply record", zap.String("id", id), zap.Error(err))
			}
			continue
		}
		e, err := ecs.Deserialize(rec, nil)
		if err != nil {
			s.log.Warn("create entity", zap.String("id", id), zap.Error(err))
			continue
		}
		s.entities[id] = e
		s.order = append(s.order, id)
		if pos, ok := ecs.Find[*ext.Positionable](e); ok {
			s.render[id] = pos.Position()
		}
	}

	if len(snap.RemovedEntityIDs) > 0 {
		s.remove(snap.RemovedEntityIDs)
	}

	s.DayNumber = snap.DayNumber
	s.UntilNextCycle = snap.UntilNextCycle
	s.IsDay = snap.IsDay
}

func (s *State) remove(ids []string) {
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.entities[id]; !ok {
			continue
		}
		gone[id] = struct{}{}
		delete(s.entities, id)
		delete(s.render, id)
	}
	if len(gone) == 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := gone[id]; !ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// Interpolate moves every render position LerpFactor of the way to the
// entity's latest position. Call once per rendered frame.
func (s *State) Interpolate() {
	for _, id := range s.order {
		pos, ok := ecs.Find[*ext.Positionable](s.entities[id])
		if !ok {
			continue
		}
		target := pos.Position()
		last, seen := s.render[id]
		if !seen {
			s.render[id] = target
			continue
		}
		s.render[id] = last.Lerp(target, LerpFactor)
	}
}

// RenderPosition is where id should be drawn this frame.
func (s *State) RenderPosition(id string) (geom.Vector2, bool) {
	v, ok := s.render[id]
	return v, ok
}

func (s *State) Entity(id string) *ecs.Entity { return s.entities[id] }

// Entities returns the known entities in the order they first appeared.
func (s *State) Entities() []*ecs.Entity {
	out := make([]*ecs.Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

// Player is the local player's entity, or nil before YourId arrives.
func (s *State) Player() *ecs.Entity {
	if s.PlayerID == "" {
		return nil
	}
	return s.entities[s.PlayerID]
}

// AlivePlayers counts players that are not dead, as shown on the HUD.
func (s *State) AlivePlayers() (alive, total int) {
	for _, id := range s.order {
		e := s.entities[id]
		if e.Type() != ecs.TypePlayer {
			continue
		}
		total++
		if d, ok := ecs.Find[*ext.Destructible](e); !ok || !d.IsDead() {
			alive++
		}
	}
	return alive, total
}
