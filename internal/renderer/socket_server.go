package renderer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/zishang520/socket.io/v2/socket"
)

// SocketPath is where the socket.io endpoint is mounted.
const SocketPath = "/socket.io/"

// SocketServer is a Sink broadcasting messages to every connected socket.io
// view. Views that connect late receive the latest init and update messages
// straight away.
type SocketServer struct {
	io *socket.Server

	mu         sync.Mutex
	views      map[socket.SocketId]struct{}
	seen       bool
	lastInit   *InitMessage
	lastUpdate *UpdateMessage

	closed    chan struct{}
	closeOnce sync.Once
}

// NewSocketServer creates the socket.io server. ctx supplies the logger for
// connection events.
func NewSocketServer(ctx context.Context) *SocketServer {
	s := &SocketServer{
		io:     socket.NewServer(nil, nil),
		views:  make(map[socket.SocketId]struct{}),
		closed: make(chan struct{}),
	}
	logger := ctxlog.FromContext(ctx).With("sink", "socket_server")

	_ = s.io.On("connection", func(clients ...any) {
		view, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		id := view.Id()
		logger.Info("🔌 View connected.", "sid", id)
		s.join(id)
		s.replay(view)

		_ = view.On(EventRefresh, func(...any) {
			logger.Debug("View requested a refresh.", "sid", id)
			s.replay(view)
		})
		_ = view.On("disconnect", func(reason ...any) {
			logger.Info("View disconnected.", "sid", id, "reason", reason)
			s.leave(id)
		})
	})
	return s
}

// Handler returns the socket.io HTTP handler, to be mounted at SocketPath.
func (s *SocketServer) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Init implements Sink.
func (s *SocketServer) Init(_ context.Context, msg InitMessage) error {
	s.mu.Lock()
	s.lastInit = &msg
	s.mu.Unlock()
	s.io.Emit(EventInit, msg)
	return nil
}

// Update implements Sink.
func (s *SocketServer) Update(_ context.Context, msg UpdateMessage) error {
	s.mu.Lock()
	s.lastUpdate = &msg
	s.mu.Unlock()
	s.io.Emit(EventUpdate, msg)
	return nil
}

// Views is the number of connected views.
func (s *SocketServer) Views() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Closed is closed once the last connected view disconnects. It never fires
// before a first view has connected.
func (s *SocketServer) Closed() <-chan struct{} {
	return s.closed
}

// ListenAndServe serves the socket.io endpoint on addr until ctx is done,
// then shuts the HTTP server down gracefully.
func (s *SocketServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("renderer listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener. The listener is closed
// when Serve returns.
func (s *SocketServer) Serve(ctx context.Context, ln net.Listener) error {
	logger := ctxlog.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle(SocketPath, s.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🖼️ Renderer endpoint listening.", "address", fmt.Sprintf("http://%s%s", ln.Addr(), SocketPath))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("renderer server: %w", err)
	case <-ctx.Done():
	}

	logger.Debug("Shutting down renderer endpoint.")
	s.io.Close(nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("renderer shutdown: %w", err)
	}
	return nil
}

func (s *SocketServer) join(id socket.SocketId) {
	s.mu.Lock()
	s.views[id] = struct{}{}
	s.seen = true
	s.mu.Unlock()
}

func (s *SocketServer) leave(id socket.SocketId) {
	s.mu.Lock()
	delete(s.views, id)
	last := s.seen && len(s.views) == 0
	s.mu.Unlock()
	if last {
		s.closeOnce.Do(func() { close(s.closed) })
	}
}

func (s *SocketServer) replay(view *socket.Socket) {
	s.mu.Lock()
	initMsg, updateMsg := s.lastInit, s.lastUpdate
	s.mu.Unlock()
	if initMsg != nil {
		_ = view.Emit(EventInit, *initMsg)
	}
	if updateMsg != nil {
		_ = view.Emit(EventUpdate, *updateMsg)
	}
}
