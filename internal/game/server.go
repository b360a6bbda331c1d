// Package game drives the simulation: the fixed-rate tick, the day/night
// cycle and game-over detection.
package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/core/system"
	"github.com/survivethenight/server/internal/world"
)

type Config struct {
	FPS                    int
	DayDuration            float64 // seconds
	NightDuration          float64 // seconds
	PerformanceLogInterval time.Duration
}

// TickInterval is the fixed tick budget derived from FPS.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Map is the map collaborator: it owns terrain and decides where things spawn.
type Map interface {
	GenerateMap()
	SpawnZombies(day int) int
	PlacePlayer(p *ecs.Entity)
	MapEvent() event.Map
}

// NightScheduler optionally varies the length of a night.
type NightScheduler interface {
	NightDuration(day int, base float64) (float64, bool)
}

// Transport receives everything the server sends to clients.
type Transport interface {
	BroadcastEvent(ev event.Event)
}

type Option func(*Server)

func WithMetrics(m *Metrics) Option { return func(s *Server) { s.metrics = m } }

func WithNightScheduler(n NightScheduler) Option { return func(s *Server) { s.nights = n } }

// Server is the authoritative game. All state is owned by the tick goroutine;
// other goroutines talk to it through the Input-phase systems.
type Server struct {
	cfg      Config
	entities *world.Manager
	gameMap  Map
	bus      *event.Bus
	runner   *system.Runner
	metrics  *Metrics
	nights   NightScheduler
	log      *zap.Logger

	transports []Transport
	newGame    []func()
	spawned    []func(*ecs.Entity)

	dayNumber      int
	untilNextCycle float64
	isDay          bool
	gameOver       bool

	lastUpdate time.Time
	perf       perfStats

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewServer wires the server into entities as its game handle and registers
// the built-in tick systems. Call StartNewGame before the first tick.
func NewServer(cfg Config, entities *world.Manager, gameMap Map, log *zap.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		entities: entities,
		gameMap:  gameMap,
		bus:      event.NewBus(),
		runner:   system.NewRunner(),
		log:      log,
		stopCh:   make(chan struct{}),

		dayNumber:      1,
		untilNextCycle: cfg.DayDuration,
		isDay:          true,
	}
	for _, opt := range opts {
		opt(s)
	}
	entities.SetGameManagers(s)

	s.runner.OnPhaseDone(s.metrics.observePhase)
	s.bus.SubscribeAll(s.metrics.observeEvent)
	s.bus.SubscribeAll(s.deliver)

	s.runner.Register(&entityUpdateSystem{s: s})
	s.runner.Register(&cycleSystem{s: s})
	s.runner.Register(&gameOverSystem{s: s})
	s.runner.Register(&pruneSystem{s: s})
	s.runner.Register(&broadcastSystem{s: s})
	return s
}

// Entities implements ecs.Managers.
func (s *Server) Entities() ecs.Queries { return s.entities }

// Broadcaster implements ecs.Managers.
func (s *Server) Broadcaster() ecs.Broadcaster { return s }

// BroadcastEvent queues ev for delivery at the end of the tick.
func (s *Server) BroadcastEvent(ev event.Event) { s.bus.Publish(ev) }

// EntityManager exposes the manager to Input-phase systems.
func (s *Server) EntityManager() *world.Manager { return s.entities }

// MapEvent returns the current map for clients that join mid-game.
func (s *Server) MapEvent() event.Map { return s.gameMap.MapEvent() }

// Bus returns the event bus so other components can subscribe to events.
func (s *Server) Bus() *event.Bus { return s.bus }

func (s *Server) AddTransport(t Transport) { s.transports = append(s.transports, t) }

// AddSystem registers an extra tick system, typically an Input-phase one.
func (s *Server) AddSystem(sys system.System) { s.runner.Register(sys) }

// OnNewGame registers fn to run after every map regeneration.
func (s *Server) OnNewGame(fn func()) { s.newGame = append(s.newGame, fn) }

// OnPlayerSpawned registers fn to run for every player SpawnPlayer adds.
func (s *Server) OnPlayerSpawned(fn func(*ecs.Entity)) { s.spawned = append(s.spawned, fn) }

func (s *Server) DayNumber() int          { return s.dayNumber }
func (s *Server) UntilNextCycle() float64 { return s.untilNextCycle }
func (s *Server) IsDay() bool             { return s.isDay }
func (s *Server) IsGameOver() bool        { return s.gameOver }

// StartNewGame resets the cycle and regenerates the map. Every entity of the
// previous game is reported as removed in the next snapshot.
func (s *Server) StartNewGame() {
	tracker := s.entities.StateTracker()
	for _, e := range s.entities.Entities() {
		tracker.TrackRemoval(e.ID())
	}

	s.gameOver = false
	s.dayNumber = 1
	s.untilNextCycle = s.cfg.DayDuration
	s.isDay = true
	s.gameMap.GenerateMap()
	s.BroadcastEvent(s.gameMap.MapEvent())

	for _, fn := range s.newGame {
		fn()
	}
	if s.metrics != nil {
		s.metrics.dayNumber.Set(float64(s.dayNumber))
	}
	s.log.Info("new game started")
}

// SpawnPlayer creates a player at the spawn area and adds it to the world.
// It returns nil when the player type is not registered.
func (s *Server) SpawnPlayer() *ecs.Entity {
	p := s.entities.CreateEntity(ecs.TypePlayer)
	if p == nil {
		return nil
	}
	s.gameMap.PlacePlayer(p)
	s.entities.AddEntity(p)
	for _, fn := range s.spawned {
		fn(p)
	}
	return p
}

// PlayerIDs lists the live players in insertion order.
func (s *Server) PlayerIDs() []string {
	players := s.entities.PlayerEntities()
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID()
	}
	return ids
}

// Snapshot returns the current game state without consuming removals.
func (s *Server) Snapshot() Snapshot {
	return s.snapshot(s.entities.StateTracker().Removed())
}

func (s *Server) snapshot(removed []string) Snapshot {
	ents := s.entities.Entities()
	recs := make([]ecs.Record, 0, len(ents))
	for _, e := range ents {
		recs = append(recs, e.Serialize())
	}
	if removed == nil {
		removed = []string{}
	}
	return Snapshot{
		Entities:         recs,
		RemovedEntityIDs: removed,
		DayNumber:        s.dayNumber,
		UntilNextCycle:   s.untilNextCycle,
		IsDay:            s.isDay,
	}
}

// Tick advances the simulation to now. Input-phase systems always run; the
// rest of the tick is skipped once the game is over.
func (s *Server) Tick(now time.Time) {
	started := time.Now()

	var dt time.Duration
	if !s.lastUpdate.IsZero() && now.After(s.lastUpdate) {
		dt = now.Sub(s.lastUpdate)
	}
	s.lastUpdate = now

	s.runner.TickPhase(system.PhaseInput, dt)
	if s.gameOver {
		s.bus.Flush()
		return
	}
	s.runner.TickPhase(system.PhaseUpdate, dt)
	s.runner.TickPhase(system.PhasePostUpdate, dt)
	s.runner.TickPhase(system.PhaseCleanup, dt)
	s.runner.TickPhase(system.PhaseOutput, dt)

	s.trackPerformance(time.Since(started), now)
}

// Run ticks at the configured rate until ctx is done or Stop is called.
// Ticks that run long are not compensated; the schedule simply drifts.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	s.log.Info("game loop started", zap.Duration("tick", s.cfg.TickInterval()))
	for {
		select {
		case now := <-ticker.C:
			s.Tick(now)
		case <-s.stopCh:
			s.log.Info("game loop stopped")
			return nil
		case <-ctx.Done():
			s.log.Info("game loop stopped", zap.Error(ctx.Err()))
			return nil
		}
	}
}

// Stop ends Run. Safe to call more than once and from any goroutine.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Server) deliver(ev event.Event) {
	for _, t := range s.transports {
		t.BroadcastEvent(ev)
	}
}

func (s *Server) handleDayNightCycle(dt float64) {
	s.untilNextCycle -= dt
	if s.untilNextCycle > 0 {
		return
	}
	s.isDay = !s.isDay
	if s.isDay {
		s.dayNumber++
		s.untilNextCycle = s.cfg.DayDuration
		s.onDayStart()
	} else {
		s.untilNextCycle = s.nightDuration()
		s.onNightStart()
	}
	if s.metrics != nil {
		s.metrics.dayNumber.Set(float64(s.dayNumber))
	}
}

func (s *Server) nightDuration() float64 {
	if s.nights != nil {
		if d, ok := s.nights.NightDuration(s.dayNumber, s.cfg.NightDuration); ok {
			return d
		}
	}
	return s.cfg.NightDuration
}

func (s *Server) onDayStart() {
	s.log.Info("day started", zap.Int("day", s.dayNumber))
}

func (s *Server) onNightStart() {
	n := s.gameMap.SpawnZombies(s.dayNumber)
	s.log.Info("night started", zap.Int("day", s.dayNumber), zap.Int("zombies", n))
}

// handleIfGameOver ends the game once at least one player exists and every
// player is dead.
func (s *Server) handleIfGameOver() {
	players := s.entities.PlayerEntities()
	if len(players) == 0 {
		return
	}
	for _, p := range players {
		if !world.IsDead(p) {
			return
		}
	}
	s.endGame()
}

func (s *Server) endGame() {
	s.gameOver = true
	s.log.Info("game over", zap.Int("day", s.dayNumber))
	s.BroadcastEvent(event.GameOver{})
}
