package dhcp

import (
	"errors"
	"fmt"
	"log/slog"
)

// requestFlavor distinguishes the three RFC 2131 §4.3.2 REQUEST states per
// the table in §4.5.
type requestFlavor int

const (
	flavorInvalid requestFlavor = iota
	flavorSelecting
	flavorInitReboot
	flavorRenewOrRebind
)

// Engine is the mutable context from §9's "process-wide cursor and
// hostname -> engine context" design note: the allocatable range, the
// rotating cursor, the binding table, and this server's identity, all
// threaded explicitly through every handler instead of living in globals.
// Per §5, nothing here needs a mutex: the engine is driven by a single
// goroutine that fully handles one datagram before the next is read.
type Engine struct {
	Range          Range
	cursor         Addr
	Bindings       *Table
	ServerHostname string
	Logger         *slog.Logger
}

// decision is the engine's verdict on a single inbound frame: either a
// reply to send (Kind != 0) or a silent drop (Kind == 0).
type decision struct {
	Kind   byte // MsgOffer, MsgAck, or MsgNak; 0 means drop
	YIAddr Addr
	CIAddr Addr
}

var noReply decision

// clientIdentity returns the identity key used to deduplicate clients, per
// §3: the CLIENT_ID option's bytes if present, otherwise the full 16-byte
// CHAddr field verbatim, including any trailing zero padding.
func clientIdentity(f *Frame, opts Options) []byte {
	if id, ok := opts.ClientID(); ok {
		return id
	}
	chaddr := make([]byte, len(f.CHAddr))
	copy(chaddr, f.CHAddr[:])
	return chaddr
}

// HandleDatagram runs one inbound datagram through the full pipeline: parse
// (C1), index options (C2), decide (C5), serialize the reply (C1), and
// compute its destination (C6). It returns ok=false when the datagram
// yields no reply, whether because the engine chose to drop it or because
// parsing failed; callers should not treat ok=false as an error in itself,
// only log what HandleDatagram already logged.
func (e *Engine) HandleDatagram(raw []byte) (reply []byte, dest Destination, ok bool) {
	frame, err := ParseFrame(raw)
	if err != nil {
		e.Logger.Warn("dropping malformed frame", "error", err)
		return nil, Destination{}, false
	}

	opts := ParseOptions(frame.OptionsRaw)
	hlen := int(frame.HLen)
	if hlen > len(frame.CHAddr) {
		hlen = len(frame.CHAddr)
	}
	e.Logger.Debug("parsed frame", "xid", frame.XID, "chaddr", fmtMAC(frame.CHAddr[:hlen]), "options", optionTags(opts))

	hostname, hasHostname := opts.Hostname()
	if !hasHostname || hostname == "" {
		e.Logger.Debug("dropping request with no hostname", "xid", frame.XID, "error", ErrNoHostname)
		return nil, Destination{}, false
	}
	if hostname == e.ServerHostname {
		e.Logger.Debug("dropping request echoing our own hostname", "xid", frame.XID, "hostname", hostname, "error", ErrOwnHostname)
		return nil, Destination{}, false
	}

	msgType, hasType := opts.MessageType()
	if !hasType {
		e.Logger.Warn("dropping request with missing or unsupported message type", "xid", frame.XID, "error", ErrUnsupportedMessageType)
		return nil, Destination{}, false
	}

	id := clientIdentity(frame, opts)

	var d decision
	switch msgType {
	case MsgDiscover:
		d = e.handleDiscover(frame, id)
	case MsgRequest:
		d = e.handleRequest(frame, opts, id)
	case MsgDecline, MsgRelease:
		// Acknowledged limitation (§3/§4.5): parsed, never mutates state.
		e.Logger.Debug("ignoring DECLINE/RELEASE", "xid", frame.XID, "type", msgType)
		return nil, Destination{}, false
	case MsgInform:
		e.Logger.Debug("ignoring INFORM", "xid", frame.XID)
		return nil, Destination{}, false
	case MsgOffer, MsgAck, MsgNak:
		e.Logger.Warn("dropping unexpected server-to-client message at the server", "xid", frame.XID, "type", msgType, "error", ErrUnsupportedMessageType)
		return nil, Destination{}, false
	default:
		e.Logger.Warn("dropping request with unsupported message type", "xid", frame.XID, "type", msgType, "error", ErrUnsupportedMessageType)
		return nil, Destination{}, false
	}

	if d.Kind == 0 {
		return nil, Destination{}, false
	}

	replyHeader, replyOpts := e.buildReply(frame, d)
	dest = route(frame, d.Kind)
	return replyHeader.Encode(replyOpts), dest, true
}

// handleDiscover implements §4.5's DISCOVER rules: sticky reuse for an
// already-bound client, otherwise a fresh allocation. The cursor advances
// on every successful offer "regardless of whether the offer address came
// from the allocator or from sticky reuse" — a deliberate choice to reduce
// collisions across reboot storms, per §4.5.
func (e *Engine) handleDiscover(f *Frame, id []byte) decision {
	if bound, ok := e.Bindings.FindByClientID(id); ok {
		e.cursor = bound
		return decision{Kind: MsgOffer, YIAddr: bound}
	}

	addr, ok := NextFree(e.Range, e.cursor, e.Bindings)
	if !ok {
		e.Logger.Error("dropping DISCOVER, address range exhausted", "xid", f.XID, "error", ErrRangeExhausted)
		return noReply
	}
	if err := e.Bindings.Insert(addr, id); err != nil {
		e.Logger.Error("dropping DISCOVER, binding insert failed", "xid", f.XID, "error", fmt.Errorf("%w: %w", ErrOutOfMemory, err))
		return noReply
	}
	e.cursor = addr
	return decision{Kind: MsgOffer, YIAddr: addr}
}

// handleRequest classifies the REQUEST into its RFC 2131 §4.3.2 flavor per
// §4.5's table, then resolves it against the binding table.
func (e *Engine) handleRequest(f *Frame, opts Options, id []byte) decision {
	flavor, candidate := e.classifyRequest(f, opts)
	switch flavor {
	case flavorSelecting:
		return e.respondSelecting(id)
	case flavorInitReboot, flavorRenewOrRebind:
		return e.respondToBinding(id, candidate)
	default:
		e.Logger.Warn("dropping REQUEST with invalid option combination", "xid", f.XID, "error", ErrInvalidRequestCombination)
		return noReply
	}
}

// classifyRequest applies §4.5's REQUEST flavor table. It also returns the
// candidate address the caller should compare the binding against for
// INIT-REBOOT (REQUESTED_IP) and RENEWING/REBINDING (ciaddr); SELECTING has
// no such comparison, so its candidate is unused by the caller.
func (e *Engine) classifyRequest(f *Frame, opts Options) (requestFlavor, Addr) {
	serverID, hasServerID := opts.ServerID()
	reqIP, hasReqIP := opts.RequestedIP()
	ciaddrZero := f.CIAddr.IsZero()

	switch {
	case hasServerID && serverID == e.Range.ServerAddr && ciaddrZero:
		return flavorSelecting, ZeroAddr
	case !hasServerID && hasReqIP:
		return flavorInitReboot, reqIP
	case !hasServerID && !hasReqIP && !ciaddrZero:
		return flavorRenewOrRebind, f.CIAddr
	default:
		return flavorInvalid, ZeroAddr
	}
}

// respondSelecting resolves the SELECTING flavor per §4.5's table: ACK if
// the client is bound, NAK otherwise. REQUESTED_IP is a don't-care for this
// flavor (the table lists it as "—"), so unlike INIT-REBOOT/RENEWING there
// is no address comparison here — a bound client gets ACKed even if it sent
// no REQUESTED_IP at all. This also covers SELECTING against an unknown
// client_id (S4): absent a binding, the answer is always NAK, never ACK.
func (e *Engine) respondSelecting(id []byte) decision {
	bound, ok := e.Bindings.FindByClientID(id)
	if !ok {
		return decision{Kind: MsgNak}
	}
	return decision{Kind: MsgAck, YIAddr: bound, CIAddr: bound}
}

// respondToBinding is the ACK/NAK decision shared by INIT-REBOOT and
// RENEWING/REBINDING: ACK only if the client has a binding and that
// binding's address matches candidate, NAK otherwise. This also covers any
// REQUEST sent without a prior DISCOVER (testable property 7): absent a
// binding, the answer is always NAK, never ACK.
func (e *Engine) respondToBinding(id []byte, candidate Addr) decision {
	bound, ok := e.Bindings.FindByClientID(id)
	if ok && bound == candidate {
		return decision{Kind: MsgAck, YIAddr: bound, CIAddr: bound}
	}
	return decision{Kind: MsgNak}
}

// buildReply turns a decision into a reply header and its serialized
// options, echoing the fields §3 requires (xid, flags, giaddr, chaddr,
// hlen, htype) and setting the relay broadcast override from §4.6 rule 1.
func (e *Engine) buildReply(req *Frame, d decision) (Header, []byte) {
	h := Header{
		Op:     opBootReply,
		HType:  req.HType,
		HLen:   req.HLen,
		XID:    req.XID,
		Flags:  req.Flags,
		GIAddr: req.GIAddr,
		CHAddr: req.CHAddr,
		SIAddr: e.Range.ServerAddr,
	}
	if !req.GIAddr.IsZero() {
		h.Flags |= 0x8000
	}

	switch d.Kind {
	case MsgOffer:
		h.YIAddr = d.YIAddr
		return h, replyOptions(MsgOffer, uint32(LeaseTime.Seconds()), e.Range.Mask, e.Range.ServerAddr, false)
	case MsgAck:
		h.CIAddr = d.CIAddr
		h.YIAddr = d.YIAddr
		return h, replyOptions(MsgAck, uint32(LeaseTime.Seconds()), e.Range.Mask, e.Range.ServerAddr, false)
	case MsgNak:
		return h, replyOptions(MsgNak, 0, ZeroAddr, e.Range.ServerAddr, true)
	default:
		return h, nil
	}
}

func optionTags(opts Options) []byte {
	tags := make([]byte, 0, len(opts))
	for tag := range opts {
		tags = append(tags, tag)
	}
	return tags
}

func fmtMAC(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out := make([]byte, 0, len(b)*3-1)
	const hex = "0123456789abcdef"
	for i, c := range b {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hex[c>>4], hex[c&0xf])
	}
	return string(out)
}

// classifyError is a small helper the driver loop can use to decide
// whether a transport error is terminal, per §5/§7.
func classifyError(err error) (terminal bool) {
	return errors.Is(err, ErrEndpointClosed)
}
