// Command dhcpd is the thin driver around the dhcp engine: it resolves
// configuration (flags or interface discovery), opens the listening
// socket, and runs the engine loop until a shutdown signal arrives. Process
// lifecycle is deliberately kept out of the dhcp package itself (§1's
// "out of scope" list); this file, and signal handling in particular, is
// adapted from the teacher's dhcp/server/server.go Run().
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"dhcpd/dhcp"
	"dhcpd/internal/socket"
)

func main() {
	var (
		addrFlag     = flag.String("addr", "", "this server's IPv4 address (default: auto-discover the host's single non-loopback interface)")
		maskFlag     = flag.String("mask", "", "subnet mask, e.g. 255.255.255.0 (default: auto-discover)")
		hostnameFlag = flag.String("hostname", "", "this server's own HOSTNAME option value, used to filter out its own broadcasts (default: os.Hostname())")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(logger, *addrFlag, *maskFlag, *hostnameFlag); err != nil {
		logger.Error("dhcpd exiting", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addrFlag, maskFlag, hostnameFlag string) error {
	addr, mask, iface, err := resolveNetwork(addrFlag, maskFlag)
	if err != nil {
		return fmt.Errorf("resolving network configuration: %w", err)
	}

	hostname := hostnameFlag
	if hostname == "" {
		hostname, err = os.Hostname()
		if err != nil {
			return fmt.Errorf("resolving hostname: %w", err)
		}
	}

	engine, err := dhcp.New(dhcp.Config{
		ServerAddr:     addr,
		Mask:           mask,
		ServerHostname: hostname,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	listener, err := socket.Listen(iface, dhcp.ServerPort)
	if err != nil {
		return fmt.Errorf("opening listener on %s: %w", iface.Name, err)
	}

	logger.Info("dhcpd listening", "interface", iface.Name, "addr", addr, "mask", mask, "hostname", hostname)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Run(ctx, listener)
	}()

	select {
	case s := <-sig:
		logger.Info("received signal, stopping", "signal", s)
		cancel()
		listener.Close()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// resolveNetwork returns the server's address, mask and interface either
// from explicit flags or by auto-discovering the host's single usable
// non-loopback interface, per SPEC_FULL.md §12's resolution of local
// network discovery being out of the engine's scope (§1).
func resolveNetwork(addrFlag, maskFlag string) (addr, mask net.IP, iface *net.Interface, err error) {
	if addrFlag != "" || maskFlag != "" {
		addr = net.ParseIP(addrFlag).To4()
		mask = net.ParseIP(maskFlag).To4()
		if addr == nil || mask == nil {
			return nil, nil, nil, fmt.Errorf("-addr and -mask must both be set to valid IPv4 dotted-quad values")
		}
		discoveredIface, _, _, discErr := socket.Discover()
		if discErr != nil {
			return nil, nil, nil, discErr
		}
		return addr, mask, discoveredIface, nil
	}

	discoveredIface, discoveredAddr, discoveredMask, discErr := socket.Discover()
	if discErr != nil {
		return nil, nil, nil, discErr
	}
	return discoveredAddr, discoveredMask, discoveredIface, nil
}
