package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"faultpoint/internal/directive"
	"faultpoint/internal/service/web"
	"faultpoint/internal/session"
	"faultpoint/internal/shared"
	"faultpoint/internal/shared/logger"
	"faultpoint/internal/shared/types"
)

// Server owns the bound listening socket and the accept loop. Its
// state is LISTENING or STOPPED, independent of any session's
// lifetime: stopping acceptance never touches open connections.
type Server struct {
	cfg    *types.Config
	global directive.Directive
	hub    *web.Hub

	listener   net.Listener
	listenPort int

	stopped        atomic.Bool
	activeSessions atomic.Int64
	closeOnce      sync.Once
	waitGroup      sync.WaitGroup
}

// session.Acceptor is how SHUT reaches the listener.
var _ session.Acceptor = (*Server)(nil)

// New creates a server. global may be nil; when set it is executed on
// every new session and inbound payloads are never consulted.
func New(cfg *types.Config, global directive.Directive, hub *web.Hub) *Server {
	return &Server{
		cfg:    cfg,
		global: global,
		hub:    hub,
	}
}

// InitializeListener binds the port and prepares to serve without
// blocking. It returns the actual port, which matters when the
// configured port is 0.
func (s *Server) InitializeListener() (int, error) {
	listenAddr := fmt.Sprintf("0.0.0.0:%d", s.cfg.ServerConf.ListenPort)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}
	s.listener = listener
	s.listenPort = listener.Addr().(*net.TCPAddr).Port

	logger.Info().Str("listen_addr", listener.Addr().String()).Msg(">>> Fault endpoint is listening.")
	return s.listenPort, nil
}

// Serve runs the blocking accept loop. Must be called after
// InitializeListener.
func (s *Server) Serve() {
	if s.listener == nil {
		logger.Error().Msg("Server.Serve() called before InitializeListener()")
		return
	}
	s.waitGroup.Add(1)
	s.acceptLoop()
}

func (s *Server) acceptLoop() {
	defer s.waitGroup.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Info().Msg("Listener stopped accepting connections.")
				return
			}
			logger.Warn().Err(err).Msg("Failed to accept connection")
			continue
		}
		s.waitGroup.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection is the session's single worker goroutine: it runs
// directive execution inline, so actions on one session are strictly
// sequential while sessions stay independent of each other.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.waitGroup.Done()
	defer conn.Close()

	s.activeSessions.Add(1)
	defer s.activeSessions.Add(-1)

	var written, read atomic.Uint64
	counted := shared.NewCountedConn(conn, &written, &read)

	sess := session.New(counted, s, s.hub)
	sess.Connected()
	defer func() {
		sess.Log.Info().
			Uint64("bytes_written", written.Load()).
			Uint64("bytes_read", read.Load()).
			Msg("session traffic")
		sess.Disconnected()
	}()

	if s.global != nil {
		// The global directive runs once per session, before any
		// inbound-data handling. Execution errors are session-scoped
		// and already logged by the executor.
		_ = session.Execute(sess, s.global)
	}

	bufSize := s.cfg.CommonConf.BufferSize
	if bufSize <= 0 {
		bufSize = 4096
	}
	buf := make([]byte, bufSize)
	for {
		n, err := counted.Read(buf)
		if err != nil {
			// EOF, peer reset, or an earlier CLOSE action; the
			// deferred Disconnected covers logging.
			return
		}
		if n == 0 {
			continue
		}
		if s.global != nil {
			// Inbound bytes are never consulted for directives.
			continue
		}
		if !sess.ConsumeInbound() {
			continue
		}
		d, ok := directive.Extract(buf[:n])
		if !ok {
			sess.Log.Warn().Int("payload_len", n).Msg("no directive found in payload")
			continue
		}
		_ = session.Execute(sess, d)
	}
}

// StopAccepting closes the listening socket without waiting for or
// affecting open sessions. It is the SHUT action's entry point and is
// safe to call from any session goroutine, multiple times.
func (s *Server) StopAccepting() error {
	var err error
	s.closeOnce.Do(func() {
		s.stopped.Store(true)
		if s.listener != nil {
			err = s.listener.Close()
		}
	})
	return err
}

// Close stops accepting and then waits for all session goroutines.
// Used on process shutdown, never by SHUT.
func (s *Server) Close() {
	_ = s.StopAccepting()
	s.waitGroup.Wait()
	logger.Info().Msg("Server has been shut down")
}

// Status implements web.StatusProvider for the dashboard.
func (s *Server) Status() *web.Status {
	return &web.Status{
		Listening:       !s.stopped.Load(),
		ListenPort:      s.listenPort,
		ActiveSessions:  s.activeSessions.Load(),
		GlobalDirective: s.global != nil,
	}
}
