package tcp

import (
	"github.com/google/gopacket/layers"

	"github.com/netwatch-oss/tcpdecode/metrics"
	"github.com/netwatch-oss/tcpdecode/tcpip"
)

// EncodeType selects which kind of response segment to synthesize.
type EncodeType int

const (
	EncodeRST EncodeType = iota
	EncodeFIN
	EncodePush
)

// Direction picks which side of the original exchange the synthesized
// segment addresses.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// EncodeState carries everything encode needs beyond the original header
// bytes: the decoded state of the packet being responded to, the response
// type, direction, and optional seq-delta/payload.
type EncodeState struct {
	Original   *State
	OriginalIP tcpip.IPContext
	Type       EncodeType
	Dir        Direction
	Mode       Mode

	// Payload, when non-nil, is appended after the header for FIN/PUSH
	// responses.
	Payload []byte

	// SeqDelta, when HasSeqDelta is true, is added to the computed
	// sequence number.
	HasSeqDelta bool
	SeqDelta    int32
}

// Encode synthesizes a response segment for enc into out, which must be
// pre-sized to hold payload (if any) plus HeaderLen bytes; Encode never
// grows out itself (out is never reallocated on this path). It
// returns the slice of out actually written and true on success, or nil
// and false if out was too small.
func Encode(enc *EncodeState, out []byte) ([]byte, bool) {
	st := enc.Original
	h := st.Header

	payloadLen := 0
	if (enc.Type == EncodeFIN || enc.Type == EncodePush) && enc.Payload != nil {
		payloadLen = len(enc.Payload)
	}
	total := payloadLen + HeaderLen
	if len(out) < total {
		metrics.EncodeCount.WithLabelValues("encode", "fail").Inc()
		return nil, false
	}
	out = out[:total]

	ho := out[:HeaderLen]
	if payloadLen > 0 {
		copy(out[HeaderLen:total], enc.Payload)
	}

	ctl := uint32(0)
	if h.Flags().SYN() {
		ctl = 1
	}
	dsize := uint32(len(st.Data))

	var srcPort, dstPort layers.TCPPort
	var seq, ack uint32

	switch enc.Dir {
	case Forward:
		srcPort, dstPort = st.SrcPort, st.DstPort
		if enc.Mode == Inline {
			seq = h.Seq()
		} else {
			seq = h.Seq() + dsize + ctl
		}
		ack = h.Ack()
	case Reverse:
		srcPort, dstPort = st.DstPort, st.SrcPort
		seq = h.Ack()
		ack = h.Seq() + dsize + ctl
	}

	if enc.HasSeqDelta {
		seq = uint32(int64(seq) + int64(enc.SeqDelta))
	}

	var respFlags Flags
	var window uint16
	switch enc.Type {
	case EncodeFIN:
		respFlags = FlagACK | FlagFIN
		window = 0
	case EncodePush:
		respFlags = FlagACK | FlagPSH
		window = 65535
	default:
		respFlags = FlagRST | FlagACK
		window = 0
	}

	PutHeader(ho, srcPort, dstPort, seq, ack, HeaderLen/4, respFlags, window, 0)

	var buf [40]byte
	pseudo := tcpip.PseudoHeader(buf[:], reverseIPContext(enc.OriginalIP, enc.Dir), len(out))
	cksum := Checksum(pseudo, out)
	PutChecksum(ho, cksum)

	metrics.EncodeCount.WithLabelValues("encode", "ok").Inc()
	return out, true
}

// reverseIPContext swaps source/destination for a Reverse-direction
// response so the checksum pseudoheader matches the segment actually being
// sent.
func reverseIPContext(ip tcpip.IPContext, dir Direction) tcpip.IPContext {
	if dir == Forward {
		return ip
	}
	return tcpip.StaticContext{
		Ver:            ip.Version(),
		Src:            ip.DstIP(),
		Dst:            ip.SrcIP(),
		PayloadLen:     ip.PayloadLength(),
		Proto:          ip.NextProtocol(),
		TTL:            ip.HopLimit(),
		Identification: ip.ID(),
	}
}

// Update recomputes the checksum of an already-built segment in place
// after another layer in the pipeline edited the payload (the
// update entry point). segment is header+payload; ip is the (possibly
// already-reversed) IP context to build the pseudoheader from. It returns
// false only if segment is shorter than a TCP header.
func Update(segment []byte, ip tcpip.IPContext) bool {
	if len(segment) < HeaderLen {
		metrics.EncodeCount.WithLabelValues("update", "fail").Inc()
		return false
	}
	PutChecksum(segment, 0)
	var buf [40]byte
	pseudo := tcpip.PseudoHeader(buf[:], ip, len(segment))
	cksum := Checksum(pseudo, segment)
	PutChecksum(segment, cksum)
	metrics.EncodeCount.WithLabelValues("update", "ok").Inc()
	return true
}

// Format swaps the port fields of a cloned header in place, for the case
// where a packet is duplicated with direction reversed (the format
// entry point).
func Format(cloned []byte) {
	cloned[0], cloned[1], cloned[2], cloned[3] = cloned[2], cloned[3], cloned[0], cloned[1]
}
