package socket

import (
	"errors"
	"net"

	"dhcpd/dhcp"
)

// wrapClosed maps the stdlib's net.ErrClosed onto dhcp.ErrEndpointClosed so
// Engine.Run's classifyError recognizes a closed listener as the terminal
// shutdown signal from §5, not just another transient recv error.
func wrapClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return errors.Join(err, dhcp.ErrEndpointClosed)
	}
	return err
}
