package session

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"faultpoint/internal/service/web"
)

// Acceptor is the handle a session uses to stop the owning listener
// from accepting further connections (the SHUT action). It is passed
// in explicitly rather than reached through the connection object.
type Acceptor interface {
	StopAccepting() error
}

// Session is one accepted connection and its directive-execution
// state. All of its fields are owned by the single goroutine serving
// the connection.
type Session struct {
	ID       string
	Conn     net.Conn
	Acceptor Acceptor
	Log      zerolog.Logger
	hub      *web.Hub

	// consumed marks that the session has already taken its one
	// directive from inbound data. Set exactly once.
	consumed bool
}

func New(conn net.Conn, acceptor Acceptor, hub *web.Hub) *Session {
	id := uuid.NewString()
	l := log.With().
		Str("session_id", id).
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()
	return &Session{
		ID:       id,
		Conn:     conn,
		Acceptor: acceptor,
		Log:      l,
		hub:      hub,
	}
}

// ConsumeInbound marks the session's single shot at an inbound
// directive as spent and reports whether this call was the first.
// Payloads after the first are ignored by design, whether or not the
// first one contained a directive.
func (s *Session) ConsumeInbound() bool {
	if s.consumed {
		return false
	}
	s.consumed = true
	return true
}

func (s *Session) broadcast(event, action, param string, err error) {
	entry := &web.SessionEvent{
		SessionID:  s.ID,
		RemoteAddr: s.Conn.RemoteAddr().String(),
		Event:      event,
		Action:     action,
		Param:      param,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.hub.BroadcastSessionEvent(entry)
}

// Connected / Disconnected emit the session lifecycle events consumed
// by the logger and the dashboard.
func (s *Session) Connected() {
	s.Log.Info().Msg("client connected")
	s.broadcast("connected", "", "", nil)
}

func (s *Session) Disconnected() {
	s.Log.Info().Msg("client disconnected")
	s.broadcast("disconnected", "", "", nil)
}
