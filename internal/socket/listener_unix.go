//go:build unix

package socket

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// Listener is the production dhcp.Endpoint: a UDP/IPv4 socket bound to port
// 67 on a single interface, with SO_BROADCAST and SO_REUSEADDR enabled the
// way the teacher's conn_unix.go enabled them on its raw socket — except
// here they're set with golang.org/x/sys/unix's named constants on a plain
// AF_INET/SOCK_DGRAM socket, rather than syscall's bare integer literals on
// an AF_PACKET one, since this server only ever needs UDP/IPv4, not raw
// Ethernet framing.
type Listener struct {
	pc        *ipv4.PacketConn
	ifIndex   int
	localPort int
}

// Listen binds a broadcast-capable UDP socket to iface on port, following
// the teacher's socket-setup sequence (create, set options, bind to
// device, wrap as a net.PacketConn) but through golang.org/x/sys/unix
// rather than raw syscall numbers, and finishing with
// golang.org/x/net/ipv4's PacketConn so inbound datagrams can be checked
// against the interface they actually arrived on.
func Listen(iface *net.Interface, port int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("socket: creating socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socket: enabling SO_BROADCAST: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socket: enabling SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptString(fd, unix.SOL_SOCKET, unix.SO_BINDTODEVICE, iface.Name); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socket: binding to device %s: %w", iface.Name, err)
	}

	addr := unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socket: binding to port %d: %w", port, err)
	}

	f := os.NewFile(uintptr(fd), fmt.Sprintf("dhcp-%s", iface.Name))
	conn, err := net.FilePacketConn(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("socket: wrapping fd: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetControlMessage(ipv4.FlagInterface, true); err != nil {
		pc.Close()
		return nil, fmt.Errorf("socket: enabling interface control messages: %w", err)
	}

	return &Listener{pc: pc, ifIndex: iface.Index, localPort: port}, nil
}

// Recv implements dhcp.Endpoint. It reports the wrapped net.ErrClosed via
// dhcp.ErrEndpointClosed so the engine loop can distinguish a clean shutdown
// from a transient error, per §5/§7. It also drops any datagram whose
// control message reports an interface other than the one Listen bound to:
// SO_BINDTODEVICE already keeps other interfaces' traffic off this socket in
// the common case, but a control-message mismatch is cheap to check and
// catches the interface being renumbered out from under the bound device.
func (l *Listener) Recv(buf []byte) (int, net.Addr, error) {
	for {
		n, cm, peer, err := l.pc.ReadFrom(buf)
		if err != nil {
			return 0, nil, wrapClosed(err)
		}
		if cm != nil && cm.IfIndex != l.ifIndex {
			continue
		}
		return n, peer, nil
	}
}

// Send implements dhcp.Endpoint, sending to dest:port regardless of which
// interface the original datagram arrived on — this server only ever binds
// one.
func (l *Listener) Send(buf []byte, dest net.IP, port int) error {
	_, err := l.pc.WriteTo(buf, nil, &net.UDPAddr{IP: dest, Port: port})
	return err
}

// Close shuts down the underlying socket; a subsequent Recv returns
// dhcp.ErrEndpointClosed.
func (l *Listener) Close() error {
	return l.pc.Close()
}
