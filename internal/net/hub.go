// Package net carries game traffic over websockets: one Session per client,
// and a Hub that bridges sessions to the game loop.
package net

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/event"
	"github.com/survivethenight/server/internal/game"
)

type Config struct {
	InQueueSize        int
	OutQueueSize       int
	MaxMessagesPerTick int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

// Hub accepts websocket clients and hands them to the game loop.
// New sessions cross goroutines through a channel; everything else in the
// hub is touched only by the game loop.
type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	newConns chan *Session
	closing  atomic.Bool
	log      *zap.Logger

	srv      *game.Server
	sessions map[uint64]*Session // game loop only
	order    []uint64            // join order, game loop only
	newGame  bool

	sessionGauge prometheus.Gauge
	slowClients  prometheus.Counter
}

// NewHub creates a hub. reg may be nil to skip metrics registration.
func NewHub(cfg Config, reg prometheus.Registerer, log *zap.Logger) *Hub {
	if cfg.MaxMessagesPerTick <= 0 {
		cfg.MaxMessagesPerTick = 32
	}
	h := &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		newConns: make(chan *Session, 64),
		log:      log,
		sessions: make(map[uint64]*Session),

		sessionGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stn",
			Name:      "sessions",
			Help:      "Connected websocket sessions.",
		}),
		slowClients: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stn",
			Name:      "slow_client_disconnects_total",
			Help:      "Sessions dropped because their output queue filled up.",
		}),
	}
	if reg != nil {
		reg.MustRegister(h.sessionGauge, h.slowClients)
	}
	return h
}

// Attach makes the hub srv's transport and installs its tick systems.
func (h *Hub) Attach(srv *game.Server) {
	h.srv = srv
	srv.AddTransport(h)
	srv.AddSystem(&inputSystem{h: h})
	srv.AddSystem(&outputSystem{h: h})
	srv.OnNewGame(h.respawnAll)
}

// ServeHTTP upgrades the request and queues the session for the game loop.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closing.Load() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	id := h.nextID.Add(1)
	sess := newSession(conn, id, h.cfg, h.log)
	sess.onSlow = h.slowClients.Inc
	sess.Start()

	h.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	select {
	case h.newConns <- sess:
	default:
		h.log.Warn("join queue full, rejecting client", zap.Uint64("session", id))
		sess.Close()
	}
}

// BroadcastEvent implements game.Transport. The frame is encoded once and
// buffered on every session.
func (h *Hub) BroadcastEvent(ev event.Event) {
	if len(h.sessions) == 0 {
		return
	}
	data, err := EncodeEvent(ev)
	if err != nil {
		h.log.Error("encode event", zap.String("type", string(ev.Type())), zap.Error(err))
		return
	}
	for _, id := range h.order {
		h.sessions[id].Send(data)
	}
}

// Shutdown refuses new clients and closes every session. Call it after the
// game loop has stopped.
func (h *Hub) Shutdown() {
	h.closing.Store(true)
	for {
		select {
		case sess := <-h.newConns:
			sess.Close()
		default:
			for _, sess := range h.sessions {
				sess.FlushOutput()
				sess.Close()
			}
			return
		}
	}
}

func (h *Hub) join(sess *Session) {
	h.sessions[sess.ID] = sess
	h.order = append(h.order, sess.ID)
	h.sessionGauge.Set(float64(len(h.sessions)))

	h.spawnFor(sess)
	sess.SendEvent(h.srv.MapEvent())
}

func (h *Hub) spawnFor(sess *Session) {
	p := h.srv.SpawnPlayer()
	if p == nil {
		h.log.Error("player type not registered", zap.Uint64("session", sess.ID))
		return
	}
	sess.PlayerID = p.ID()
	sess.SendEvent(event.YourID{PlayerID: p.ID()})
	h.log.Info("player joined", zap.Uint64("session", sess.ID), zap.String("player", p.ID()))
}

// leave removes sess and schedules its player for removal.
func (h *Hub) leave(sess *Session) {
	delete(h.sessions, sess.ID)
	for i, id := range h.order {
		if id == sess.ID {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.sessionGauge.Set(float64(len(h.sessions)))

	em := h.srv.EntityManager()
	if p := em.GetEntityByID(sess.PlayerID); p != nil {
		em.MarkEntityForRemoval(p, 0)
	}
	h.log.Info("client disconnected", zap.Uint64("session", sess.ID), zap.String("player", sess.PlayerID))
}

// respawnAll gives every connected session a fresh player after the map is
// regenerated.
func (h *Hub) respawnAll() {
	for _, id := range h.order {
		h.spawnFor(h.sessions[id])
	}
}

func (h *Hub) flushAll() {
	for _, id := range h.order {
		h.sessions[id].FlushOutput()
	}
}
