package game

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/entities"
	"github.com/survivethenight/server/internal/ext"
	"github.com/survivethenight/server/internal/geom"
	"github.com/survivethenight/server/internal/world"
)

type fakeMap struct {
	m          *world.Manager
	generated  int
	nights     []int
	nextPlayer float64
}

func (f *fakeMap) GenerateMap() {
	f.generated++
	f.m.Clear()
	f.m.SetMapSize(512, 512)
}

func (f *fakeMap) SpawnZombies(day int) int {
	f.nights = append(f.nights, day)
	return 0
}

func (f *fakeMap) PlacePlayer(p *ecs.Entity) {
	f.nextPlayer += 40
	ecs.Get[*ext.Positionable](p).SetPosition(geom.Vec(f.nextPlayer, 100))
}

func (f *fakeMap) MapEvent() event.Map {
	return event.Map{Tiles: [][]int{{0}}, TileSize: 16}
}

type recorder struct{ events []event.Event }

func (r *recorder) BroadcastEvent(ev event.Event) { r.events = append(r.events, ev) }

func (r *recorder) count(t event.Type) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type() == t {
			n++
		}
	}
	return n
}

func (r *recorder) lastSnapshot() (Snapshot, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if s, ok := r.events[i].(Snapshot); ok {
			return s, true
		}
	}
	return Snapshot{}, false
}

type fixture struct {
	srv     *Server
	m       *world.Manager
	gameMap *fakeMap
	out     *recorder
	metrics *Metrics
	now     time.Time
}

func testConfig() Config {
	return Config{FPS: 30, DayDuration: 1, NightDuration: 100, PerformanceLogInterval: 5 * time.Second}
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newLoggedFixture(t, zap.NewNop(), opts...)
}

func newLoggedFixture(t *testing.T, log *zap.Logger, opts ...Option) *fixture {
	t.Helper()
	tbl, err := data.DefaultEntityTable()
	require.NoError(t, err)

	f := &fixture{now: time.Unix(1_700_000_000, 0)}
	f.m = world.NewManager(zap.NewNop(), world.WithClock(func() time.Time { return f.now }))
	entities.Register(f.m, tbl, zap.NewNop())
	f.gameMap = &fakeMap{m: f.m}
	f.out = &recorder{}
	f.metrics = NewMetrics(prometheus.NewRegistry())

	opts = append([]Option{WithMetrics(f.metrics)}, opts...)
	f.srv = NewServer(testConfig(), f.m, f.gameMap, log, opts...)
	f.srv.AddTransport(f.out)
	f.srv.StartNewGame()
	f.srv.Tick(f.now)
	return f
}

// step advances the clock by d and runs one tick.
func (f *fixture) step(d time.Duration) {
	f.now = f.now.Add(d)
	f.srv.Tick(f.now)
}

type tickCounter struct{ n int }

func (c *tickCounter) Kind() ecs.Kind               { return "tickCounter" }
func (c *tickCounter) Serialize(ecs.Record)         {}
func (c *tickCounter) Deserialize(ecs.Record) error { return nil }
func (c *tickCounter) Update(float64)               { c.n++ }

// sleeper stalls the next entity update for d.
type sleeper struct{ d time.Duration }

func (s *sleeper) Kind() ecs.Kind               { return "sleeper" }
func (s *sleeper) Serialize(ecs.Record)         {}
func (s *sleeper) Deserialize(ecs.Record) error { return nil }

func (s *sleeper) Update(float64) {
	time.Sleep(s.d)
	s.d = 0
}
