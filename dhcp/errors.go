package dhcp

import "errors"

// Sentinel errors for the handling outcomes described in the error handling
// design: each one maps to a fixed log level and drop behavior in the
// engine's request loop. Callers should use errors.Is against these rather
// than comparing error strings.
var (
	ErrMalformedFrame            = errors.New("dhcp: malformed frame")
	ErrUnsupportedMessageType    = errors.New("dhcp: unsupported message type")
	ErrNoHostname                = errors.New("dhcp: request has no hostname")
	ErrOwnHostname               = errors.New("dhcp: request echoes our own hostname")
	ErrRangeExhausted            = errors.New("dhcp: address range exhausted")
	ErrOutOfMemory               = errors.New("dhcp: binding table insert failed")
	ErrInvalidRequestCombination = errors.New("dhcp: invalid REQUEST option combination")
	ErrEmptyRange                = errors.New("dhcp: configured range is empty")
	ErrServerNotInRange          = errors.New("dhcp: server address not in derived range")

	// ErrEndpointClosed is the terminal transport error: the receive loop
	// returns normally when Recv reports it. Endpoint implementations
	// should wrap it rather than return net.ErrClosed directly so the
	// engine doesn't need to know about net's error shapes.
	ErrEndpointClosed = errors.New("dhcp: endpoint closed")
)
