package persist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/event"
)

// MatchStore is where finished matches go.
type MatchStore interface {
	InsertMatch(ctx context.Context, m MatchRow) error
}

// Game is the recorder's read-only view of the running game.
type Game interface {
	DayNumber() int
	PlayerIDs() []string
}

// Recorder builds match rows from game events on the tick goroutine and
// writes them from its own goroutine, so a slow database never stalls a tick.
type Recorder struct {
	store   MatchStore
	game    Game
	now     func() time.Time
	timeout time.Duration
	queue   chan MatchRow
	log     *zap.Logger

	current *MatchRow // tick goroutine only
	players map[string]bool
	dead    map[string]bool
}

func NewRecorder(store MatchStore, game Game, log *zap.Logger) *Recorder {
	return &Recorder{
		store:   store,
		game:    game,
		now:     time.Now,
		timeout: 5 * time.Second,
		queue:   make(chan MatchRow, 16),
		log:     log,
	}
}

// Subscribe hooks the recorder to the game's event bus.
func (r *Recorder) Subscribe(bus *event.Bus) {
	bus.Subscribe(event.TypeMap, func(event.Event) { r.begin() })
	bus.Subscribe(event.TypePlayerDeath, func(ev event.Event) {
		if d, ok := ev.(event.PlayerDeath); ok {
			r.playerDied(d.PlayerID)
		}
	})
	bus.Subscribe(event.TypeZombieDeath, func(event.Event) {
		if r.current != nil {
			r.current.ZombiesKilled++
		}
	})
	bus.Subscribe(event.TypeGameOver, func(event.Event) { r.finish() })
}

// begin opens a match with everyone already in the new world.
func (r *Recorder) begin() {
	r.current = &MatchRow{ID: uuid.New(), StartedAt: r.now()}
	r.players = make(map[string]bool)
	r.dead = make(map[string]bool)
	for _, id := range r.game.PlayerIDs() {
		r.players[id] = true
	}
}

// PlayerJoined counts a player spawned into the running match, including one
// that later disconnects without dying. Call it from the tick goroutine.
func (r *Recorder) PlayerJoined(id string) {
	if r.current != nil {
		r.players[id] = true
	}
}

func (r *Recorder) playerDied(id string) {
	if r.current == nil || r.dead[id] {
		return
	}
	r.dead[id] = true
	r.players[id] = true
	r.current.Deaths = append(r.current.Deaths, DeathRow{
		PlayerID: id,
		Day:      r.game.DayNumber(),
		DiedAt:   r.now(),
	})
}

func (r *Recorder) finish() {
	if r.current == nil {
		return
	}
	m := *r.current
	r.current = nil
	m.EndedAt = r.now()
	m.DaysSurvived = r.game.DayNumber()
	m.Players = len(r.players)

	select {
	case r.queue <- m:
	default:
		r.log.Warn("match queue full, dropping match", zap.String("match", m.ID.String()))
	}
}

// Run writes queued matches until ctx is done, then drains what is left.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case m := <-r.queue:
			r.write(ctx, m)
		case <-ctx.Done():
			for {
				select {
				case m := <-r.queue:
					r.write(context.Background(), m)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(ctx context.Context, m MatchRow) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.store.InsertMatch(ctx, m); err != nil {
		r.log.Error("save match", zap.String("match", m.ID.String()), zap.Error(err))
		return
	}
	r.log.Info("match saved",
		zap.String("match", m.ID.String()),
		zap.Int("days", m.DaysSurvived),
		zap.Int("players", m.Players),
		zap.Int("zombies_killed", m.ZombiesKilled),
	)
}
