package tcp

import "github.com/google/gopacket/layers"

// ProtocolBits is the protocol-bit set a decoder asserts on success.
type ProtocolBits uint8

const ProtoTCP ProtocolBits = 1 << 0

// ErrorBits is the error-flag set the decoder can raise without failing
// the decode (a "soft" error).
type ErrorBits uint8

const ErrChecksumBad ErrorBits = 1 << 0

// DecodeFlags are input-only flags the caller sets before calling Decode.
type DecodeFlags uint8

// UnsureEncap marks a packet whose integrity cannot be assumed because the
// current decode path lies inside an encapsulation (Teredo, ESP, ...). A
// checksum mismatch under this flag is a silent decode failure instead of
// an anomaly event, to suppress false positives on encrypted/encapsulated
// traffic.
const UnsureEncap DecodeFlags = 1 << 0

// State is the per-packet decoded TCP state, analogous to the packet
// context the decoder mutates in place. It is owned exclusively
// by the goroutine processing the packet; there is no internal
// synchronization and none is needed.
type State struct {
	// Header borrows the TCP header from the caller's buffer; nil when
	// decode failed the caller must not trust any other field.
	Header *Header

	SrcPort, DstPort layers.TCPPort

	Options     [OptLenMax]Record
	OptionCount int

	// Data is the segment payload, immediately following the header.
	Data []byte

	Protocols ProtocolBits
	Errors    ErrorBits

	// DecodeFlags is read by Decode (caller sets UnsureEncap before
	// calling); Decode does not modify it.
	DecodeFlags DecodeFlags

	// LayerLen is the number of bytes this layer consumed (data_offset *
	// 4); only trustworthy when Decode returned true.
	LayerLen int
}

// Reset clears st for reuse across packets, without reallocating the
// Options array.
func (st *State) Reset() {
	st.Header = nil
	st.SrcPort, st.DstPort = 0, 0
	st.OptionCount = 0
	st.Data = nil
	st.Protocols = 0
	st.Errors = 0
	st.LayerLen = 0
	// DecodeFlags intentionally left for the caller to set per packet.
}
