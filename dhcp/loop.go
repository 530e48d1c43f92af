package dhcp

import (
	"context"
	"net"
)

// Endpoint is the abstract datagram endpoint from §6: a UDP socket with
// broadcast-send enabled, already bound and listening, owned by the
// driver. The engine only ever calls Recv and Send — it never opens a
// socket or discovers an interface itself (that's §1's "out of scope,
// touched only through the interfaces in §6").
type Endpoint interface {
	Recv(buf []byte) (n int, peer net.Addr, err error)
	Send(buf []byte, dest net.IP, port int) error
}

// maxDatagram is the maximum UDP payload size, used to size the loop's
// single read buffer.
const maxDatagram = 65527

// Run drives the single-threaded, event-driven loop from §5: read one
// datagram, fully handle it (parse, decide, maybe reply), then read the
// next. It returns nil when ep reports ErrEndpointClosed (the terminal
// shutdown signal) or when ctx is canceled; any other Recv error is logged
// and the loop retries, per §5's "robustness against transient errno
// conditions".
func (e *Engine) Run(ctx context.Context, ep Endpoint) error {
	buf := make([]byte, maxDatagram)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, _, err := ep.Recv(buf)
		if err != nil {
			if classifyError(err) {
				e.Logger.Info("endpoint closed, stopping")
				return nil
			}
			e.Logger.Warn("recv error, retrying", "error", err)
			continue
		}

		reply, dest, ok := e.HandleDatagram(buf[:n])
		if !ok {
			continue
		}
		if err := ep.Send(reply, dest.IP, dest.Port); err != nil {
			e.Logger.Error("failed to send reply", "error", err, "dest", dest.IP, "port", dest.Port)
		}
	}
}
