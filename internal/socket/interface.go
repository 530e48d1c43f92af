// Package socket provides the driver-side datagram endpoint: interface
// discovery and the listening UDP socket the engine reads and writes
// through. None of this is exercised by the core dhcp package directly; it
// implements dhcp.Endpoint for cmd/dhcpd.
package socket

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoInterface and ErrAmbiguousInterface are returned by Discover when the
// host doesn't have exactly one usable non-loopback IPv4 interface. The
// teacher's interface.go picked the first such interface it found and
// logged a choice; this server targets "exactly one non-loopback interface"
// (§1), so an ambiguous host is a configuration error the driver should
// surface, not silently resolve by picking one.
var (
	ErrNoInterface        = errors.New("socket: no usable non-loopback IPv4 interface found")
	ErrAmbiguousInterface = errors.New("socket: more than one usable non-loopback IPv4 interface found")
)

// Discover enumerates the host's network interfaces and returns the single
// non-loopback, up, IPv4-addressed one along with its address and subnet
// mask. It fails if zero or more than one interface qualifies.
func Discover() (iface *net.Interface, addr net.IP, mask net.IP, err error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("socket: listing interfaces: %w", err)
	}

	var found *net.Interface
	var foundAddr, foundMask net.IP

	for i := range ifaces {
		candidate := ifaces[i]
		if candidate.Flags&net.FlagLoopback != 0 || candidate.Flags&net.FlagUp == 0 {
			continue
		}
		ip, ipnet, ok := firstIPv4(candidate)
		if !ok {
			continue
		}
		if found != nil {
			return nil, nil, nil, ErrAmbiguousInterface
		}
		found = &candidate
		foundAddr = ip
		foundMask = net.IP(ipnet.Mask)
	}

	if found == nil {
		return nil, nil, nil, ErrNoInterface
	}
	return found, foundAddr, foundMask, nil
}

func firstIPv4(iface net.Interface) (net.IP, *net.IPNet, bool) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, nil, false
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4, ipnet, true
		}
	}
	return nil, nil, false
}
