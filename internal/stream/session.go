package stream

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/sim"
)

// Conn is a client connection as the session sees it. Send must not block.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Join registers a client; the session answers on Reply with its ID.
type Join struct {
	Conn  Conn
	Reply chan<- int
}

type Leave struct {
	ID int
}

// Pointer forwards one client message to the simulator.
type Pointer struct {
	ID  int
	Msg PointerMessage
}

// Session owns a simulator. Only its Run goroutine touches it; everything
// else talks to it through Inbox.
type Session struct {
	Inbox chan any

	sim            *sim.Simulator
	variant        string
	tickHz         int
	broadcastEvery int
	clients        map[int]Conn
	nextID         int
	dragOwner      int
	pending        sim.Events
	logger         *log.Logger
}

type SessionOptions struct {
	Variant        string
	TickHz         int
	BroadcastEvery int
	Logger         *log.Logger
}

func NewSession(s *sim.Simulator, opts SessionOptions) *Session {
	if opts.TickHz <= 0 {
		opts.TickHz = 60
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Session{
		Inbox:          make(chan any, 256),
		sim:            s,
		variant:        opts.Variant,
		tickHz:         opts.TickHz,
		broadcastEvery: opts.BroadcastEvery,
		clients:        make(map[int]Conn),
		nextID:         1,
		logger:         opts.Logger,
	}
}

// Run ticks the simulator until ctx is done, then closes every client.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
	defer ticker.Stop()
	defer s.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.Inbox:
			s.handle(cmd)
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	ev := s.sim.Step()
	s.pending |= ev
	if ev.Has(sim.EventReset) {
		s.logger.Debug("reset", "tick", s.sim.Snapshot().Tick)
	}
	if ev.Has(sim.EventMergeKick) {
		s.logger.Debug("merge kick", "tick", s.sim.Snapshot().Tick)
	}

	snap := s.sim.Snapshot()
	if snap.Tick%s.broadcastEvery != 0 {
		return
	}
	b, err := encode(newSnapshotMessage(snap, s.pending))
	if err != nil {
		s.logger.Error("encode snapshot", "err", err)
		return
	}
	s.pending = 0
	s.broadcast(b)
}

func (s *Session) handle(cmd any) {
	switch c := cmd.(type) {
	case Join:
		id := s.nextID
		s.nextID++
		s.clients[id] = c.Conn
		c.Reply <- id
		s.logger.Info("client joined", "id", id, "clients", len(s.clients))

		p := s.sim.Params()
		hello, err := encode(HelloMessage{
			Type:    MsgHello,
			Client:  id,
			Variant: s.variant,
			Shape:   p.Shape,
			Bodies:  s.sim.NumBodies(),
			TickHz:  s.tickHz,
		})
		if err == nil && c.Conn.Send(hello) != nil {
			s.remove(id)
		}
	case Leave:
		if _, ok := s.clients[c.ID]; ok {
			s.remove(c.ID)
			s.logger.Info("client left", "id", c.ID, "clients", len(s.clients))
		}
		if len(s.clients) == 0 && s.sim.Dragging() {
			s.releaseDrag()
		}
	case Pointer:
		if _, ok := s.clients[c.ID]; !ok {
			return
		}
		s.pointer(c.ID, c.Msg)
	}
}

func (s *Session) pointer(id int, m PointerMessage) {
	vp := m.Viewport()
	switch m.Type {
	case MsgDown:
		i, ok := s.sim.OnPointerDown(vp, m.X, m.Y)
		if ok {
			s.dragOwner = id
		}
		s.logger.Debug("pointer down", "client", id, "body", i, "hit", ok)
	case MsgMove:
		s.sim.OnPointerMove(vp, m.X, m.Y)
	case MsgUp:
		s.releaseDrag()
	case MsgReset:
		s.sim.Reset()
		s.dragOwner = 0
	default:
		s.logger.Warn("unknown message", "client", id, "type", m.Type)
	}
}

// broadcast drops clients whose send fails rather than waiting on them.
func (s *Session) broadcast(b []byte) {
	var failed []int
	for id, c := range s.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		s.logger.Warn("dropping slow client", "id", id)
		s.remove(id)
	}
}

// remove closes a client and lets go of any body it was holding.
func (s *Session) remove(id int) {
	if c, ok := s.clients[id]; ok {
		_ = c.Close()
	}
	delete(s.clients, id)
	if id == s.dragOwner {
		s.logger.Debug("releasing drag of departed client", "id", id)
		s.releaseDrag()
	}
}

func (s *Session) releaseDrag() {
	s.sim.OnPointerUp()
	s.dragOwner = 0
}

func (s *Session) closeAll() {
	for id := range s.clients {
		s.remove(id)
	}
}
