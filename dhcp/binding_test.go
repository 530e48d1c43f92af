package dhcp

import "testing"

func TestTableFindByClientIDIgnoresEmptyIDs(t *testing.T) {
	tbl := NewTable()
	_ = tbl.Insert(Addr{10, 0, 0, 1}, nil) // sentinel, empty id

	if _, ok := tbl.FindByClientID(nil); ok {
		t.Error("FindByClientID(nil) must never match, even the sentinel")
	}
	if _, ok := tbl.FindByClientID([]byte{}); ok {
		t.Error("FindByClientID([]byte{}) must never match")
	}
}

func TestTableFindByClientIDExactMatch(t *testing.T) {
	tbl := NewTable()
	id := []byte{0xaa, 0xbb, 0xcc}
	_ = tbl.Insert(Addr{10, 0, 0, 5}, id)

	got, ok := tbl.FindByClientID([]byte{0xaa, 0xbb, 0xcc})
	if !ok || got != (Addr{10, 0, 0, 5}) {
		t.Errorf("FindByClientID = %v, %v; want 10.0.0.5, true", got, ok)
	}
	if _, ok := tbl.FindByClientID([]byte{0xaa, 0xbb}); ok {
		t.Error("a shorter prefix of a stored id must not match")
	}
	if _, ok := tbl.FindByClientID([]byte{0xaa, 0xbb, 0xcc, 0x00}); ok {
		t.Error("a longer superset of a stored id must not match")
	}
}

func TestTableFindByAddress(t *testing.T) {
	tbl := NewTable()
	_ = tbl.Insert(Addr{10, 0, 0, 5}, []byte("x"))
	if !tbl.FindByAddress(Addr{10, 0, 0, 5}) {
		t.Error("expected FindByAddress to find the inserted address")
	}
	if tbl.FindByAddress(Addr{10, 0, 0, 6}) {
		t.Error("FindByAddress should not find an address never inserted")
	}
}

func TestTableNoSharedAddressOrClientID(t *testing.T) {
	// Invariants 1 and 2: the table itself trusts its callers (per §4.3's
	// contract), but the engine built on top must never itself introduce
	// a duplicate. This test exercises the table's read surface that the
	// engine relies on to enforce that.
	tbl := NewTable()
	_ = tbl.Insert(Addr{10, 0, 0, 5}, []byte("alice"))

	if tbl.FindByAddress(Addr{10, 0, 0, 5}) == false {
		t.Fatal("setup: expected address to be present")
	}
	if _, ok := tbl.FindByClientID([]byte("alice")); !ok {
		t.Fatal("setup: expected client id to be present")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}
