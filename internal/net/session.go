package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/event"
)

const maxMessageSize = 64 << 10

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID    uint64
	Token string
	conn  *websocket.Conn

	InQueue  chan Request // game loop reads requests from here
	OutQueue chan []byte  // writer goroutine reads from here

	IP       string
	PlayerID string // game loop only

	outBuf [][]byte // buffered frames, flushed by the hub (game loop only)

	readTimeout  time.Duration
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	onSlow func()
	log    *zap.Logger
}

func newSession(conn *websocket.Conn, id uint64, cfg Config, log *zap.Logger) *Session {
	token := uuid.NewString()
	return &Session{
		ID:           id,
		Token:        token,
		conn:         conn,
		InQueue:      make(chan Request, cfg.InQueueSize),
		OutQueue:     make(chan []byte, cfg.OutQueueSize),
		IP:           conn.RemoteAddr().String(),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id), zap.String("token", token)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a frame. Nothing reaches the socket until FlushOutput.
// Called only from the game loop goroutine.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// SendEvent encodes ev and buffers it for this session only.
func (s *Session) SendEvent(ev event.Event) {
	data, err := EncodeEvent(ev)
	if err != nil {
		s.log.Error("encode event", zap.String("type", string(ev.Type())), zap.Error(err))
		return
	}
	s.Send(data)
}

// FlushOutput hands buffered frames to the writer goroutine. If OutQueue is
// full the client is too slow and the session is disconnected.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, disconnecting slow client")
			if s.onSlow != nil {
				s.onSlow()
			}
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close shuts the session down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		s.extendReadDeadline()
		if kind != websocket.TextMessage {
			continue
		}

		req, err := decodeRequest(data)
		if err != nil {
			s.log.Debug("malformed request", zap.Error(err))
			continue
		}

		// Block rather than drop: a lost input leaves the player stuck in
		// its previous state until the next change.
		select {
		case s.InQueue <- req:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	var ping <-chan time.Time
	if s.readTimeout > 0 {
		t := time.NewTicker(s.readTimeout * 9 / 10)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case data := <-s.OutQueue:
			s.extendWriteDeadline()
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-ping:
			s.extendWriteDeadline()
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) extendReadDeadline() {
	if s.readTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
}

func (s *Session) extendWriteDeadline() {
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
}
