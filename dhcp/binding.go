package dhcp

import "bytes"

// binding is the tuple from §3: an assigned address and the client identity
// it was assigned to. ClientID is nil/empty for the sentinel entry that
// reserves the server's own address.
type binding struct {
	Addr     Addr
	ClientID []byte
}

// Table is the in-memory client-identifier to address index from §3/§4.3.
// Both lookups are deliberately linear scans: at the scale this server
// targets (a single LAN segment, dozens of clients) a slice is simpler to
// reason about than a dual hash index, and both lookups stay consistent
// with each other by construction. See SPEC_FULL.md §2/§4.3.
type Table struct {
	entries []binding
}

// NewTable returns an empty binding table.
func NewTable() *Table {
	return &Table{}
}

// FindByClientID returns the address bound to id. Per §4.3, this matches
// only non-empty stored ids of equal length with identical bytes — the
// sentinel server-address binding, which stores a nil/empty id, can never
// be matched this way.
func (t *Table) FindByClientID(id []byte) (Addr, bool) {
	if len(id) == 0 {
		return ZeroAddr, false
	}
	for _, b := range t.entries {
		if len(b.ClientID) == 0 {
			continue
		}
		if bytes.Equal(b.ClientID, id) {
			return b.Addr, true
		}
	}
	return ZeroAddr, false
}

// FindByAddress reports whether addr is already assigned to some binding.
func (t *Table) FindByAddress(addr Addr) bool {
	for _, b := range t.entries {
		if b.Addr == addr {
			return true
		}
	}
	return false
}

// Insert appends a new binding. Callers must ensure no existing binding
// already shares addr or a non-empty id, per §3's invariants — Insert
// itself does not re-check them, matching the contract in §4.3 ("the caller
// guarantees no duplicate pre-exists").
func (t *Table) Insert(addr Addr, id []byte) error {
	owned := make([]byte, len(id))
	copy(owned, id)
	t.entries = append(t.entries, binding{Addr: addr, ClientID: owned})
	return nil
}

// Len returns the number of bindings, including the sentinel.
func (t *Table) Len() int {
	return len(t.entries)
}
