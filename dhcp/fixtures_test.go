package dhcp

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
)

// requestBuilder assembles raw DHCP request datagrams for tests, adapted
// from the teacher's client package (client/client.go's createDHCPPacket):
// that code built a real client's DISCOVER/REQUEST wire bytes to talk to a
// live server; here the same option-appending approach builds the fixed
// inbound frames the engine's acceptance tests exercise.
type requestBuilder struct {
	xid      uint32
	chaddr   net.HardwareAddr
	hostname string
	ciaddr   net.IP
	giaddr   net.IP
	options  []byte
}

func newRequest(xid uint32, mac net.HardwareAddr, hostname string) *requestBuilder {
	return &requestBuilder{xid: xid, chaddr: mac, hostname: hostname}
}

func (b *requestBuilder) withCIAddr(ip net.IP) *requestBuilder {
	b.ciaddr = ip
	return b
}

func (b *requestBuilder) withGIAddr(ip net.IP) *requestBuilder {
	b.giaddr = ip
	return b
}

func (b *requestBuilder) withOption(tag byte, value []byte) *requestBuilder {
	b.options = append(b.options, tag, byte(len(value)))
	b.options = append(b.options, value...)
	return b
}

func (b *requestBuilder) withClientID(id []byte) *requestBuilder {
	return b.withOption(OptClientID, id)
}

func (b *requestBuilder) withRequestedIP(ip net.IP) *requestBuilder {
	return b.withOption(OptRequestedIP, ip.To4())
}

func (b *requestBuilder) withServerID(ip net.IP) *requestBuilder {
	return b.withOption(OptServerID, ip.To4())
}

// bytes renders the full datagram: fixed header, magic cookie, the
// message-type option (always present), the hostname option (only when the
// hostname is non-empty), any extra options added via withOption, then END.
func (b *requestBuilder) bytes(msgType byte) []byte {
	h := Header{
		Op:    opBootRequest,
		HType: 1,
		HLen:  6,
		XID:   b.xid,
	}
	copy(h.CHAddr[:], b.chaddr)
	if b.ciaddr != nil {
		h.CIAddr = AddrFromNetIP(b.ciaddr)
	}
	if b.giaddr != nil {
		h.GIAddr = AddrFromNetIP(b.giaddr)
	}

	opts := make([]byte, 0, len(b.options)+32)
	opts = append(opts, OptMessageType, 1, msgType)
	if b.hostname != "" {
		opts = append(opts, OptHostname, byte(len(b.hostname)))
		opts = append(opts, []byte(b.hostname)...)
	}
	opts = append(opts, b.options...)
	opts = append(opts, OptEnd)

	return h.Encode(opts)
}

func discoverFrame(xid uint32, mac net.HardwareAddr, hostname string) []byte {
	return newRequest(xid, mac, hostname).bytes(MsgDiscover)
}

// decodeAnyFrame decodes a raw datagram into typed fields without
// ParseFrame's BOOTREQUEST-only op check (§4.1's parse contract applies to
// inbound datagrams; a server reply has op == BOOTREPLY by construction, so
// exercising round-trip/decode behavior on our own replies needs this
// instead). It still validates length and the magic cookie.
func decodeAnyFrame(raw []byte) (*Frame, error) {
	if len(raw) < minFrame {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedFrame, len(raw), minFrame)
	}
	var cookie [magicSize]byte
	copy(cookie[:], raw[headerSize:headerSize+magicSize])
	if cookie != magicCookie {
		return nil, fmt.Errorf("%w: bad magic cookie", ErrMalformedFrame)
	}

	f := &Frame{
		Header: Header{
			Op:    raw[0],
			HType: raw[1],
			HLen:  raw[2],
			Hops:  raw[3],
			XID:   binary.BigEndian.Uint32(raw[4:8]),
			Secs:  binary.BigEndian.Uint16(raw[8:10]),
			Flags: binary.BigEndian.Uint16(raw[10:12]),
		},
	}
	f.CIAddr = AddrFromBytes(raw[12:16])
	f.YIAddr = AddrFromBytes(raw[16:20])
	f.SIAddr = AddrFromBytes(raw[20:24])
	f.GIAddr = AddrFromBytes(raw[24:28])
	copy(f.CHAddr[:], raw[28:44])
	copy(f.SName[:], raw[44:108])
	copy(f.File[:], raw[108:236])
	f.OptionsRaw = raw[headerSize+magicSize:]
	return f, nil
}

// decodeReply decodes a server-emitted reply back into typed fields for
// assertions, via decodeAnyFrame since the reply's op == BOOTREPLY.
func decodeReply(t interface{ Fatalf(string, ...any) }, raw []byte) (*Frame, Options) {
	f, err := decodeAnyFrame(raw)
	if err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	return f, ParseOptions(f.OptionsRaw)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func u32be(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
