package dhcp

import (
	"encoding/binary"
	"net"
)

// Addr is an IPv4 address kept in its wire representation throughout: four
// bytes in network byte order. Header fields are copied in and out of a
// frame without ever converting to the machine's native endianness.
// Numeric operations (masking, the allocator's range arithmetic) go through
// Uint32, which reinterprets the same four bytes as a big-endian integer
// rather than performing any byte-swap.
type Addr [4]byte

// ZeroAddr is the unspecified address, 0.0.0.0.
var ZeroAddr Addr

// AddrFromNetIP converts a net.IP (v4 or v4-in-v6) to its wire form. It
// returns ZeroAddr for anything that isn't a valid IPv4 address.
func AddrFromNetIP(ip net.IP) Addr {
	var a Addr
	v4 := ip.To4()
	if v4 == nil {
		return a
	}
	copy(a[:], v4)
	return a
}

// AddrFromBytes builds an Addr from a 4-byte slice. The caller must ensure
// len(b) == 4.
func AddrFromBytes(b []byte) Addr {
	var a Addr
	copy(a[:], b)
	return a
}

// Uint32FromAddr reinterprets an Addr's wire bytes as a big-endian integer,
// the "numeric (host-order) representation" the range and allocator math
// operate on.
func Uint32FromAddr(a Addr) uint32 {
	return binary.BigEndian.Uint32(a[:])
}

// AddrFromUint32 is the inverse of Uint32FromAddr.
func AddrFromUint32(n uint32) Addr {
	var a Addr
	binary.BigEndian.PutUint32(a[:], n)
	return a
}

// IsZero reports whether a is the unspecified address.
func (a Addr) IsZero() bool {
	return a == ZeroAddr
}

// ToNetIP returns a as a standard library net.IP.
func (a Addr) ToNetIP() net.IP {
	return net.IPv4(a[0], a[1], a[2], a[3])
}

func (a Addr) String() string {
	return a.ToNetIP().String()
}
