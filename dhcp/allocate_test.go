package dhcp

import "testing"

func testRange(t *testing.T) Range {
	t.Helper()
	// The server sits away from min_addr so its sentinel binding does not
	// occupy the first address the allocator hands out.
	r, err := NewRange(Addr{192, 168, 1, 5}, Addr{255, 255, 255, 0})
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	return r
}

func TestNewRangeDerivesMinMax(t *testing.T) {
	r := testRange(t)
	if r.Min != (Addr{192, 168, 1, 2}) {
		t.Errorf("Min = %v, want 192.168.1.2", r.Min)
	}
	if r.Max != (Addr{192, 168, 1, 254}) {
		t.Errorf("Max = %v, want 192.168.1.254", r.Max)
	}
}

func TestNewRangeRejectsEmptyRange(t *testing.T) {
	// 192.168.1.4/31: min = network|2 = .6 lies above max = .4, so the
	// range is empty.
	if _, err := NewRange(Addr{192, 168, 1, 4}, Addr{255, 255, 255, 254}); err == nil {
		t.Error("expected ErrEmptyRange for a /31")
	}
}

func TestNextFreeWrapsFromMaxCursor(t *testing.T) {
	r := testRange(t)
	tbl := NewTable()
	_ = tbl.Insert(r.ServerAddr, nil) // sentinel

	// Per §3, the cursor starts at max_addr so the very first allocation
	// wraps around to min_addr.
	addr, ok := NextFree(r, r.Max, tbl)
	if !ok {
		t.Fatal("expected an address")
	}
	if addr != r.Min {
		t.Errorf("first allocation = %v, want %v (min_addr)", addr, r.Min)
	}
}

func TestNextFreeSkipsBoundAddresses(t *testing.T) {
	r := testRange(t)
	tbl := NewTable()
	_ = tbl.Insert(r.ServerAddr, nil)
	_ = tbl.Insert(r.Min, []byte("a")) // occupy the first candidate

	addr, ok := NextFree(r, r.Max, tbl)
	if !ok {
		t.Fatal("expected an address")
	}
	if addr == r.Min {
		t.Error("NextFree returned an already-bound address")
	}
}

func TestNextFreeExhaustion(t *testing.T) {
	// Testable property: invariant 3's flip side — once every address in
	// the range (minus the sentinel) is bound, the allocator reports
	// exhaustion rather than reusing or panicking (S8).
	r := testRange(t)
	tbl := NewTable()
	_ = tbl.Insert(r.ServerAddr, nil)

	cursor := r.Max
	n := 0
	for {
		addr, ok := NextFree(r, cursor, tbl)
		if !ok {
			break
		}
		_ = tbl.Insert(addr, []byte{byte(n), byte(n >> 8)})
		cursor = addr
		n++
		if n > 1<<16 {
			t.Fatal("allocator never reported exhaustion")
		}
	}

	want := int(Uint32FromAddr(r.Max)-Uint32FromAddr(r.Min)) + 1 - 1 // minus the sentinel's own address slot
	if n != want {
		t.Errorf("allocated %d addresses before exhaustion, want %d", n, want)
	}
	if _, ok := NextFree(r, cursor, tbl); ok {
		t.Error("expected continued exhaustion once the range is full")
	}
}
