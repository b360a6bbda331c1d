package net

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	coresys "github.com/survivethenight/server/internal/core/system"
	"github.com/survivethenight/server/internal/entities"
)

// inputSystem admits new sessions, drops dead ones and applies client
// requests. Phase 0 (Input).
type inputSystem struct{ h *Hub }

func (*inputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *inputSystem) Update(time.Duration) {
	h := s.h

	for {
		select {
		case sess := <-h.newConns:
			h.join(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	for _, id := range append([]uint64(nil), h.order...) {
		sess := h.sessions[id]
		if sess.IsClosed() {
			h.leave(sess)
			continue
		}
		s.drain(sess)
	}

	if h.newGame {
		h.newGame = false
		h.srv.StartNewGame()
	}

	// Frames produced here would otherwise wait for the Output phase, which
	// does not run while the game is over.
	h.flushAll()
}

// drain applies at most MaxMessagesPerTick queued requests from sess.
func (s *inputSystem) drain(sess *Session) {
	for i := 0; i < s.h.cfg.MaxMessagesPerTick; i++ {
		select {
		case req := <-sess.InQueue:
			s.dispatch(sess, req)
		default:
			return
		}
	}
}

func (s *inputSystem) dispatch(sess *Session, req Request) {
	h := s.h
	switch req.Type {
	case RequestPlayerInput:
		var in entities.Input
		if err := json.Unmarshal(req.Payload, &in); err != nil {
			sess.log.Debug("bad player input", zap.Error(err))
			return
		}
		p := h.srv.EntityManager().GetEntityByID(sess.PlayerID)
		if p == nil {
			return
		}
		if ctl, ok := ecs.Find[*entities.Player](p); ok {
			ctl.SetInput(in)
		}
	case RequestStartNewGame:
		h.newGame = true
	default:
		sess.log.Debug("unknown request", zap.String("type", req.Type))
	}
}

// outputSystem hands the tick's frames to the writer goroutines. Phase 4
// (Output), after the game's own broadcast.
type outputSystem struct{ h *Hub }

func (*outputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *outputSystem) Update(time.Duration) { s.h.flushAll() }
