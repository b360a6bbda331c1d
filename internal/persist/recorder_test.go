package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/event"
)

type memStore struct {
	mu      sync.Mutex
	matches []MatchRow
	fail    bool
}

func (s *memStore) InsertMatch(_ context.Context, m MatchRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("db down")
	}
	s.matches = append(s.matches, m)
	return nil
}

func (s *memStore) saved() []MatchRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MatchRow(nil), s.matches...)
}

type day int

func (d *day) DayNumber() int { return int(*d) }

func (d *day) PlayerIDs() []string { return nil }

type fakeGame struct {
	day     int
	players []string
}

func (w *fakeGame) DayNumber() int      { return w.day }
func (w *fakeGame) PlayerIDs() []string { return w.players }

func newTestRecorder(store MatchStore, g Game) (*Recorder, *event.Bus) {
	r := NewRecorder(store, g, zap.NewNop())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	bus := event.NewBus()
	r.Subscribe(bus)
	return r, bus
}

func TestRecorderBuildsMatchFromEvents(t *testing.T) {
	store := &memStore{}
	d := day(1)
	r, bus := newTestRecorder(store, &d)

	bus.Publish(event.Map{})
	bus.Publish(event.ZombieDeath{ZombieID: "z1"})
	bus.Flush()

	d = 3
	bus.Publish(event.PlayerDeath{PlayerID: "p1"})
	bus.Publish(event.PlayerDeath{PlayerID: "p1"})
	bus.Publish(event.ZombieDeath{ZombieID: "z2"})
	bus.Flush()

	d = 4
	bus.Publish(event.PlayerDeath{PlayerID: "p2"})
	bus.Publish(event.GameOver{})
	bus.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))

	matches := store.saved()
	require.Len(t, matches, 1)
	m := matches[0]
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, 4, m.DaysSurvived)
	assert.Equal(t, 2, m.Players)
	assert.Equal(t, 2, m.ZombiesKilled)
	require.Len(t, m.Deaths, 2)
	assert.Equal(t, "p1", m.Deaths[0].PlayerID)
	assert.Equal(t, 3, m.Deaths[0].Day)
	assert.Equal(t, "p2", m.Deaths[1].PlayerID)
	assert.Equal(t, 4, m.Deaths[1].Day)
	assert.True(t, m.EndedAt.After(m.StartedAt))
}

func TestRecorderIgnoresEventsOutsideMatch(t *testing.T) {
	store := &memStore{}
	d := day(1)
	r, bus := newTestRecorder(store, &d)

	bus.Publish(event.PlayerDeath{PlayerID: "p1"})
	bus.Publish(event.GameOver{})
	bus.Publish(event.GameOver{})
	bus.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))
	assert.Empty(t, store.saved())
}

func TestRecorderDropsWhenQueueFull(t *testing.T) {
	store := &memStore{}
	d := day(1)
	r, bus := newTestRecorder(store, &d)
	r.queue = make(chan MatchRow, 1)

	for i := 0; i < 3; i++ {
		bus.Publish(event.Map{})
		bus.Publish(event.GameOver{})
		bus.Flush()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))
	assert.Len(t, store.saved(), 1)
}

func TestRecorderKeepsRunningAfterStoreError(t *testing.T) {
	store := &memStore{fail: true}
	d := day(2)
	r, bus := newTestRecorder(store, &d)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	bus.Publish(event.Map{})
	bus.Publish(event.GameOver{})
	bus.Flush()

	require.Eventually(t, func() bool { return len(r.queue) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Empty(t, store.saved())
}

func TestRecorderCountsPlayersWhoLeftAlive(t *testing.T) {
	store := &memStore{}
	w := &fakeGame{day: 1, players: []string{"p1", "p2"}}
	r, bus := newTestRecorder(store, w)

	bus.Publish(event.Map{})
	bus.Flush()
	r.PlayerJoined("p3")
	r.PlayerJoined("p1")

	w.day = 2
	bus.Publish(event.PlayerDeath{PlayerID: "p1"})
	bus.Publish(event.PlayerDeath{PlayerID: "p3"})
	bus.Publish(event.GameOver{})
	bus.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))

	matches := store.saved()
	require.Len(t, matches, 1)
	assert.Equal(t, 3, matches[0].Players, "p2 left without dying")
	assert.Len(t, matches[0].Deaths, 2)
}
