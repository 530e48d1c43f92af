package dhcp

// Range is the derived subnet range from §3: the server's own address and
// mask, and the first/last usable host addresses within that subnet.
// min_addr and max_addr are computed on the numeric representation so the
// ".0" network and ".1" router addresses are excluded from allocation and
// the broadcast address at the top of the subnet is excluded too.
type Range struct {
	ServerAddr Addr
	Mask       Addr
	Min        Addr
	Max        Addr
}

// NewRange derives the allocatable range for serverAddr/mask, per §3:
// min_addr = (server_addr & mask) | 2, max_addr = (server_addr & mask) |
// ~(mask | 1). It returns ErrEmptyRange if min_addr > max_addr; this is the
// one §6 startup failure that's returned as an error rather than asserted,
// since an oddly small subnet (e.g. a /31 or /32) is a configuration
// mistake the caller can recover from.
func NewRange(serverAddr, mask Addr) (Range, error) {
	s := Uint32FromAddr(serverAddr)
	m := Uint32FromAddr(mask)
	network := s & m
	min := network | 2
	max := network | ^(m | 1)
	if min > max {
		return Range{}, ErrEmptyRange
	}
	return Range{
		ServerAddr: serverAddr,
		Mask:       mask,
		Min:        AddrFromUint32(min),
		Max:        AddrFromUint32(max),
	}, nil
}

// Contains reports whether addr falls within [Min, Max].
func (r Range) Contains(addr Addr) bool {
	n := Uint32FromAddr(addr)
	return n >= Uint32FromAddr(r.Min) && n <= Uint32FromAddr(r.Max)
}

// size returns the number of addresses in the range.
func (r Range) size() uint32 {
	return Uint32FromAddr(r.Max) - Uint32FromAddr(r.Min) + 1
}

// NextFree implements the rotating-cursor scan from §4.4: starting just
// past cursor, it walks the range (wrapping at Max back to Min) looking for
// an address with no existing binding, stopping once it has examined every
// address in the range without success. It does not mutate cursor or
// bindings — callers that accept the offer are responsible for both,
// matching the contract that sticky reassignment never touches the
// allocator at all (§4.4's ordering note).
func NextFree(r Range, cursor Addr, bindings *Table) (Addr, bool) {
	min := Uint32FromAddr(r.Min)
	max := Uint32FromAddr(r.Max)
	candidate := Uint32FromAddr(cursor)

	for n := uint32(0); n < r.size(); n++ {
		candidate++
		if candidate > max {
			candidate = min
		}
		addr := AddrFromUint32(candidate)
		if !bindings.FindByAddress(addr) {
			return addr, true
		}
	}
	return ZeroAddr, false
}
