package shared

import (
	"net"
	"sync/atomic"
)

// CountedConn wraps a net.Conn and atomically counts the bytes moved
// in each direction, so a session can report how much fault traffic it
// actually produced.
type CountedConn struct {
	net.Conn
	written *atomic.Uint64
	read    *atomic.Uint64
}

func NewCountedConn(conn net.Conn, written, read *atomic.Uint64) *CountedConn {
	return &CountedConn{
		Conn:    conn,
		written: written,
		read:    read,
	}
}

func (c *CountedConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		c.read.Add(uint64(n))
	}
	return n, err
}

func (c *CountedConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if n > 0 {
		c.written.Add(uint64(n))
	}
	return n, err
}

// CloseWrite forwards the half-close to the underlying connection when
// it supports one, so wrapping does not hide a TCP FIN.
func (c *CountedConn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return c.Conn.Close()
}
