package world

// StateTracker records entity removals so broadcasts can tell clients which
// ids disappeared without clients diffing full snapshots.
type StateTracker struct {
	removed  []string
	capacity int
}

// NewStateTracker keeps at most capacity pending removals; older ones are
// dropped first. capacity <= 0 means unbounded.
func NewStateTracker(capacity int) *StateTracker {
	return &StateTracker{capacity: capacity}
}

func (t *StateTracker) TrackRemoval(id string) {
	t.removed = append(t.removed, id)
	if t.capacity > 0 && len(t.removed) > t.capacity {
		t.removed = t.removed[len(t.removed)-t.capacity:]
	}
}

// Removed returns removals tracked since the last Drain.
func (t *StateTracker) Removed() []string {
	return t.removed
}

// Drain returns and forgets the tracked removals.
func (t *StateTracker) Drain() []string {
	out := t.removed
	t.removed = nil
	return out
}
