package session

import (
	"crypto/rand"
	"fmt"
	"net"
	"time"

	"faultpoint/internal/directive"
)

// Execute runs a directive against the session, strictly in order: one
// action at a time, each fully completed before the next begins. The
// calling goroutine is the session's only worker, so plain blocking
// calls give the required sequencing.
//
// On success the connection is left exactly as the last action left it
// — there is no implicit close; CLOSE must be requested explicitly.
// Any handler failure aborts the remaining actions. An unknown action
// additionally force-closes the connection. Failures are scoped to
// this session and never affect the listener or other sessions.
func Execute(sess *Session, d directive.Directive) error {
	if len(d) == 0 {
		sess.Log.Info().Msg("no actions defined")
		return nil
	}

	for _, action := range d {
		if action.Kind == directive.KindInvalid {
			err := fmt.Errorf("unknown action %q", action.Raw)
			sess.Log.Error().Str("action", action.Raw).Msg("unknown action, closing connection")
			sess.broadcast("aborted", action.Raw, action.Param, err)
			sess.Conn.Close()
			return err
		}

		sess.Log.Info().
			Str("action", action.Kind.String()).
			Str("param", action.Param).
			Msg("executing action")
		sess.broadcast("action", action.Kind.String(), action.Param, nil)

		if err := apply(sess, action); err != nil {
			sess.Log.Error().Err(err).Str("action", action.Kind.String()).Msg("action failed, aborting directive")
			sess.broadcast("aborted", action.Kind.String(), action.Param, err)
			return err
		}
	}
	return nil
}

// apply dispatches one known action. The switch is exhaustive over the
// action vocabulary; adding a kind without a case here is a
// compile-visible change, not a silently accepted string.
func apply(sess *Session, action directive.Action) error {
	switch action.Kind {
	case directive.KindClose:
		return closeOutbound(sess.Conn)

	case directive.KindData:
		n, err := action.IntParam()
		if err != nil {
			return err
		}
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generating random data: %w", err)
		}
		if _, err := sess.Conn.Write(buf); err != nil {
			return fmt.Errorf("writing %d random bytes: %w", n, err)
		}
		return nil

	case directive.KindSend:
		text, err := action.TextParam()
		if err != nil {
			return err
		}
		if len(text) == 0 {
			return nil
		}
		if _, err := sess.Conn.Write([]byte(text)); err != nil {
			return fmt.Errorf("writing literal: %w", err)
		}
		return nil

	case directive.KindWait:
		ms, err := action.IntParam()
		if err != nil {
			return err
		}
		// No cancellation path: callers use WAIT to simulate stalled
		// peers, so the session sleeps for the full duration.
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return nil

	case directive.KindShut:
		if err := sess.Acceptor.StopAccepting(); err != nil {
			return fmt.Errorf("stopping listener: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown action %q", action.Raw)
	}
}

type closeWriter interface {
	CloseWrite() error
}

// closeOutbound gracefully ends the outbound side of the stream. TCP
// connections get a half-close (FIN); transports without one are
// closed outright.
func closeOutbound(conn net.Conn) error {
	if cw, ok := conn.(closeWriter); ok {
		return cw.CloseWrite()
	}
	return conn.Close()
}
