package dhcp

// Option tags in use, per §3. The full IANA registry has far more, but this
// server only ever reads these.
const (
	OptPad         byte = 0
	OptSubnetMask  byte = 1
	OptHostname    byte = 12
	OptRequestedIP byte = 50
	OptLeaseTime   byte = 51
	OptMessageType byte = 53
	OptServerID    byte = 54
	OptClientID    byte = 61
	OptEnd         byte = 255
)

// DHCP message type codes (option 53's value), per RFC 2132 §9.6.
const (
	MsgDiscover byte = 1
	MsgOffer    byte = 2
	MsgRequest  byte = 3
	MsgDecline  byte = 4
	MsgAck      byte = 5
	MsgNak      byte = 6
	MsgRelease  byte = 7
	MsgInform   byte = 8
)

// Options indexes a parsed option stream by tag. Per §3, duplicate options
// are not expected; when they occur, the first occurrence wins, which is
// exactly what building this map by first-insert-only achieves.
type Options map[byte][]byte

// ParseOptions walks data and returns the first occurrence of every option
// found, per §4.1's options-iterator contract: PAD is skipped, END
// terminates iteration, and an option whose declared length runs past the
// remaining buffer also terminates iteration (treated as truncation, not a
// parse error — the engine proceeds with whatever was already collected).
func ParseOptions(data []byte) Options {
	opts := make(Options)
	i := 0
	for i < len(data) {
		tag := data[i]
		if tag == OptPad {
			i++
			continue
		}
		if tag == OptEnd {
			break
		}
		if i+1 >= len(data) {
			break // truncated: no room for a length byte
		}
		length := int(data[i+1])
		start := i + 2
		end := start + length
		if end > len(data) {
			break // truncated: declared length runs past the buffer
		}
		if _, exists := opts[tag]; !exists {
			opts[tag] = data[start:end]
		}
		i = end
	}
	return opts
}

// Find returns the raw value for tag, if present.
func (o Options) Find(tag byte) ([]byte, bool) {
	v, ok := o[tag]
	return v, ok
}

// MessageType returns the DHCP message type, succeeding only when the
// option is exactly one byte and that byte is 1..=8. Per §4.2/§9, DISCOVER
// (1) is a valid message type here — unlike the source this was distilled
// from, which rejected it outright.
func (o Options) MessageType() (byte, bool) {
	v, ok := o[OptMessageType]
	if !ok || len(v) != 1 {
		return 0, false
	}
	t := v[0]
	if t < MsgDiscover || t > MsgInform {
		return 0, false
	}
	return t, true
}

// Hostname returns the HOSTNAME option's value as a string.
func (o Options) Hostname() (string, bool) {
	v, ok := o[OptHostname]
	if !ok {
		return "", false
	}
	return string(v), true
}

// ClientID returns the CLIENT_ID option's raw bytes.
func (o Options) ClientID() ([]byte, bool) {
	v, ok := o[OptClientID]
	return v, ok
}

// RequestedIP returns the REQUESTED_IP option, requiring exactly 4 bytes.
func (o Options) RequestedIP() (Addr, bool) {
	v, ok := o[OptRequestedIP]
	if !ok || len(v) != 4 {
		return ZeroAddr, false
	}
	return AddrFromBytes(v), true
}

// ServerID returns the SERVER_ID option, requiring exactly 4 bytes.
func (o Options) ServerID() (Addr, bool) {
	v, ok := o[OptServerID]
	if !ok || len(v) != 4 {
		return ZeroAddr, false
	}
	return AddrFromBytes(v), true
}
