package dhcp

import (
	"encoding/binary"
	"fmt"
)

// Wire layout constants from §3/§4.1: a fixed 236-byte header, a 4-byte
// magic cookie, then the options TLV stream.
const (
	headerSize = 236
	magicSize  = 4
	minFrame   = headerSize + magicSize // header + magic; an END byte is not required
)

const (
	opBootRequest = 1
	opBootReply   = 2
)

// magicCookie is the fixed value that must follow the header on every
// well-formed DHCP datagram.
var magicCookie = [magicSize]byte{99, 130, 83, 99}

// Header is the fixed 236-byte portion of a DHCP frame, decoded into typed
// fields. IPv4 fields keep their wire representation (see Addr); CHAddr,
// SName and File keep their fixed widths verbatim, including any trailing
// zero padding, since some of that padding (CHAddr in particular) is
// semantically significant as a client identifier.
type Header struct {
	Op, HType, HLen, Hops byte
	XID                   uint32
	Secs, Flags           uint16
	CIAddr, YIAddr        Addr
	SIAddr, GIAddr        Addr
	CHAddr                [16]byte
	SName                 [64]byte
	File                  [128]byte
}

// Broadcast reports whether bit 15 of Flags, the broadcast flag, is set.
func (h Header) Broadcast() bool {
	return h.Flags&0x8000 != 0
}

// Frame is a parsed inbound datagram: the fixed header plus a view of its
// options region. OptionsRaw aliases the input buffer; callers must not
// retain it past the buffer's lifetime without copying.
type Frame struct {
	Header
	OptionsRaw []byte
}

// ParseFrame validates and decodes a raw datagram per §4.1's parse
// contract: it succeeds only when the buffer is long enough, op is
// BOOTREQUEST, and the magic cookie matches exactly. Every other input,
// including a datagram whose magic cookie is merely different (not just
// absent), is rejected with ErrMalformedFrame — correcting the source's
// inverted `!memcmp` check, which rejected the *matching* case (see
// SPEC_FULL.md §9 / DESIGN.md).
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < minFrame {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedFrame, len(data), minFrame)
	}
	if data[0] != opBootRequest {
		return nil, fmt.Errorf("%w: op=%d, want BOOTREQUEST", ErrMalformedFrame, data[0])
	}
	var cookie [magicSize]byte
	copy(cookie[:], data[headerSize:headerSize+magicSize])
	if cookie != magicCookie {
		return nil, fmt.Errorf("%w: bad magic cookie", ErrMalformedFrame)
	}

	f := &Frame{
		Header: Header{
			Op:    data[0],
			HType: data[1],
			HLen:  data[2],
			Hops:  data[3],
			XID:   binary.BigEndian.Uint32(data[4:8]),
			Secs:  binary.BigEndian.Uint16(data[8:10]),
			Flags: binary.BigEndian.Uint16(data[10:12]),
		},
	}
	f.CIAddr = AddrFromBytes(data[12:16])
	f.YIAddr = AddrFromBytes(data[16:20])
	f.SIAddr = AddrFromBytes(data[20:24])
	f.GIAddr = AddrFromBytes(data[24:28])
	copy(f.CHAddr[:], data[28:44])
	copy(f.SName[:], data[44:108])
	copy(f.File[:], data[108:236])
	f.OptionsRaw = data[headerSize+magicSize:]
	return f, nil
}

// replyLayout is the fixed reply option order and size mandated by
// §4.1: MSG_TYPE, LEASE_TIME, SUBNETMASK, SERVER_ID, END, always in this
// order and always present, giving a constant 262-byte reply regardless of
// message kind.
const (
	replyOptionsSize = 3 + 6 + 6 + 6 + 1 // msgtype + lease + mask + serverid + end
	ReplySize        = headerSize + magicSize + replyOptionsSize
)

// replyOptions builds the options region of a reply frame. For NAK, the
// LEASE_TIME and SUBNETMASK slots are zeroed out in place (PAD bytes over
// their full serialized extent) rather than omitted, which is what keeps
// every reply exactly ReplySize bytes long.
func replyOptions(msgType byte, leaseSecs uint32, mask Addr, serverID Addr, nak bool) []byte {
	buf := make([]byte, 0, replyOptionsSize)
	buf = append(buf, OptMessageType, 1, msgType)
	if nak {
		buf = append(buf, make([]byte, 6)...) // LEASE_TIME slot, PAD-filled
		buf = append(buf, make([]byte, 6)...) // SUBNETMASK slot, PAD-filled
	} else {
		var lease [4]byte
		binary.BigEndian.PutUint32(lease[:], leaseSecs)
		buf = append(buf, OptLeaseTime, 4)
		buf = append(buf, lease[:]...)
		buf = append(buf, OptSubnetMask, 4)
		buf = append(buf, mask[:]...)
	}
	buf = append(buf, OptServerID, 4)
	buf = append(buf, serverID[:]...)
	buf = append(buf, OptEnd)
	return buf
}

// Encode serializes h followed by the magic cookie and opts, per §4.1's
// serialize contract: header || magic || options. It does not append an
// extra END; callers building a reply pass an options buffer that already
// ends in END (see replyOptions).
func (h Header) Encode(opts []byte) []byte {
	data := make([]byte, headerSize+magicSize+len(opts))
	data[0] = h.Op
	data[1] = h.HType
	data[2] = h.HLen
	data[3] = h.Hops
	binary.BigEndian.PutUint32(data[4:8], h.XID)
	binary.BigEndian.PutUint16(data[8:10], h.Secs)
	binary.BigEndian.PutUint16(data[10:12], h.Flags)
	copy(data[12:16], h.CIAddr[:])
	copy(data[16:20], h.YIAddr[:])
	copy(data[20:24], h.SIAddr[:])
	copy(data[24:28], h.GIAddr[:])
	copy(data[28:44], h.CHAddr[:])
	copy(data[44:108], h.SName[:])
	copy(data[108:236], h.File[:])
	copy(data[236:240], magicCookie[:])
	copy(data[240:], opts)
	return data
}
