package dhcp

import (
	"fmt"
	"log/slog"
	"net"
	"time"
)

// LeaseTime is the fixed lease duration advertised in every ACK/OFFER.
// Per §6, this is not configurable in this version.
const LeaseTime = 1 * time.Hour

// Config is the injected configuration record from §6: everything the core
// needs about the local network and this server's own identity. Interface
// discovery (finding this record's values) is the driver's job, not the
// engine's — see SPEC_FULL.md §6/§11.
type Config struct {
	ServerAddr     net.IP
	Mask           net.IP
	ServerHostname string

	// Logger receives the engine's structured log output. A nil Logger
	// falls back to slog.Default(), mirroring how the teacher's server
	// logs through the package-level slog functions when nothing else is
	// configured.
	Logger *slog.Logger
}

// New validates cfg and builds an Engine ready to serve requests. It
// derives the allocatable range, refuses to start if that range is empty,
// and inserts the sentinel binding that reserves ServerAddr from
// allocation (§3/§6).
//
// A server address outside its own derived range is a configuration
// invariant violation, not a recoverable condition — per §6 this is
// "asserted, not handled", so New panics rather than returning an error
// for that one case.
func New(cfg Config) (*Engine, error) {
	serverAddr := AddrFromNetIP(cfg.ServerAddr)
	mask := AddrFromNetIP(cfg.Mask)
	if serverAddr.IsZero() {
		return nil, fmt.Errorf("dhcp: invalid server address %v", cfg.ServerAddr)
	}
	if mask.IsZero() {
		return nil, fmt.Errorf("dhcp: invalid subnet mask %v", cfg.Mask)
	}

	rng, err := NewRange(serverAddr, mask)
	if err != nil {
		return nil, fmt.Errorf("dhcp: deriving range: %w", err)
	}
	if !rng.Contains(serverAddr) {
		panic(fmt.Sprintf("%v: server address %v not within derived range [%v, %v]",
			ErrServerNotInRange, serverAddr, rng.Min, rng.Max))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bindings := NewTable()
	// Sentinel: reserve the server's own address with an empty client id,
	// which §3 guarantees no real request can ever match.
	_ = bindings.Insert(serverAddr, nil)

	return &Engine{
		Range:          rng,
		cursor:         rng.Max, // first allocation wraps to Min, per §3
		Bindings:       bindings,
		ServerHostname: cfg.ServerHostname,
		Logger:         logger,
	}, nil
}
