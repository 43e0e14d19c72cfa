package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/blobsim/internal/sim"
)

const (
	readLimit    = 4 << 10
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 64
)

var ErrSlowClient = errors.New("client send buffer full")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a websocket to Conn. Writes go through a buffered channel
// drained by writePump so the session never waits on the network.
type wsConn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *wsConn) Send(b []byte) error {
	select {
	case <-c.done:
		return net.ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSlowClient
	}
}

func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// Server exposes a Session over websockets.
type Server struct {
	session *Session
	logger  *log.Logger
	ctx     context.Context
}

func NewServer(ctx context.Context, session *Session, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{session: session, logger: logger, ctx: ctx}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// submit hands cmd to the session, giving up once the server is stopping.
func (s *Server) submit(cmd any) bool {
	select {
	case s.session.Inbox <- cmd:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn := newWSConn(ws)
	go conn.writePump()

	reply := make(chan int, 1)
	if !s.submit(Join{Conn: conn, Reply: reply}) {
		_ = conn.Close()
		return
	}
	var id int
	select {
	case id = <-reply:
	case <-s.ctx.Done():
		_ = conn.Close()
		return
	}
	s.readPump(id, conn)
}

func (s *Server) readPump(id int, conn *wsConn) {
	defer func() {
		s.submit(Leave{ID: id})
		_ = conn.Close()
	}()

	ws := conn.ws
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read", "client", id, "err", err)
			}
			return
		}
		var msg PointerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("bad message", "client", id, "err", err)
			continue
		}
		if !s.submit(Pointer{ID: id, Msg: msg}) {
			return
		}
	}
}

// ListenAndServe runs the session and serves it on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, session *Session, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &sim.SetupError{Stage: "listen", Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           NewServer(ctx, session, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		session.Run(ctx)
	}()

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info("serving", "addr", ln.Addr().String(), "ws", "/ws")

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
	wg.Wait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
