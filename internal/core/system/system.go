package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session joins, inputs and requests
	PhaseUpdate                  // 1: entity extension updates
	PhasePostUpdate              // 2: day/night cycle, game-over detection
	PhaseCleanup                 // 3: prune entities whose removal expired
	PhaseOutput                  // 4: flush events, broadcast the snapshot

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseCleanup:
		return "cleanup"
	case PhaseOutput:
		return "output"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
