//go:build !unix

package socket

import (
	"fmt"
	"net"
)

// Listener is the non-Unix fallback endpoint: a plain UDP socket via the
// standard library, with no interface binding or broadcast-socket-option
// control beyond what net.ListenUDP gives for free. The unix build uses
// golang.org/x/sys/unix and golang.org/x/net/ipv4 for finer control; this
// file exists only so the module builds on platforms without SO_BINDTODEVICE.
type Listener struct {
	conn *net.UDPConn
}

// Listen binds a UDP socket on port across all interfaces.
func Listen(iface *net.Interface, port int) (*Listener, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("socket: listening on port %d: %w", port, err)
	}
	return &Listener{conn: conn}, nil
}

func (l *Listener) Recv(buf []byte) (int, net.Addr, error) {
	n, addr, err := l.conn.ReadFrom(buf)
	if err != nil {
		return 0, nil, wrapClosed(err)
	}
	return n, addr, nil
}

func (l *Listener) Send(buf []byte, dest net.IP, port int) error {
	_, err := l.conn.WriteTo(buf, &net.UDPAddr{IP: dest, Port: port})
	return err
}

func (l *Listener) Close() error {
	return l.conn.Close()
}
