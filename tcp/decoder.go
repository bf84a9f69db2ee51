package tcp

import (
	"strconv"

	"github.com/netwatch-oss/tcpdecode/metrics"
	"github.com/netwatch-oss/tcpdecode/tcpip"
)

// napthaSeq and shaftSynfloodSeq are the fixed sequence numbers the
// decoder's signature checks compare against.
// Both values are already in the host-order form Header.Seq returns; no
// further byte-swap is needed since the header accessor has already
// undone the wire's big-endian encoding.
const (
	napthaSeq        = 6060842
	napthaIPID       = 413
	shaftSynfloodSeq = 674711609
)

// Decoder bundles the external collaborators the decoder consults: the event sink,
// the policy adaptor, the multicast watch list, and the active-response
// drop requester. A single Decoder is reused across every packet a worker
// processes; it holds no per-packet state itself.
type Decoder struct {
	Sink      EventSink
	Policy    Policy
	Multicast MulticastChecker
	Drop      DropRequester

	// pseudo is scratch space for the pseudoheader, reused across calls so
	// Decode never allocates one per packet. 40 bytes covers both IPv4 (12)
	// and IPv6 (40).
	pseudo [40]byte
}

// NewDecoder builds a Decoder from its four collaborators. drop may be nil
// when the sensor never runs inline; Decode treats a nil Drop as a no-op
// drop requester.
func NewDecoder(sink EventSink, policy Policy, mc MulticastChecker, drop DropRequester) *Decoder {
	return &Decoder{Sink: sink, Policy: policy, Multicast: mc, Drop: drop}
}

// Decode implements the header-decoder contract: it bounds-checks raw,
// verifies the checksum, classifies flag combinations, walks the option
// list, and fills st. It returns true on success; on failure st.Header is
// left nil and no other field of st should be trusted.
//
// ip supplies the addressing and payload-length context the IP layer
// already decoded; raw is the TCP segment (header plus payload) as it
// appears on the wire, and raw_len is len(raw).
func (d *Decoder) Decode(raw []byte, ip tcpip.IPContext, st *State) bool {
	st.Reset()
	rawLen := len(raw)

	// Step 1.
	if rawLen < HeaderLen {
		d.Sink.Emit(st, EvDgramLtTCPHdr)
		metrics.DecodeCount.WithLabelValues("fail").Inc()
		return false
	}

	// Step 2.
	h := WrapHeader(raw)
	layerLen := h.DataOffset()

	// Step 3.
	if layerLen < HeaderLen {
		d.Sink.Emit(st, EvInvalidOffset)
		metrics.DecodeCount.WithLabelValues("fail").Inc()
		return false
	}

	// Step 4.
	if layerLen > rawLen {
		d.Sink.Emit(st, EvLargeOffset)
		metrics.DecodeCount.WithLabelValues("fail").Inc()
		return false
	}

	// Step 5: checksum.
	if d.Policy.ChecksumsEnabled() {
		pseudo := tcpip.PseudoHeader(d.pseudo[:], ip, rawLen)
		if Checksum(pseudo, raw[:rawLen]) != 0 {
			unsure := st.DecodeFlags&UnsureEncap != 0
			if unsure {
				metrics.ChecksumFailureCount.WithLabelValues("true").Inc()
				metrics.DecodeCount.WithLabelValues("fail").Inc()
				return false
			}
			metrics.ChecksumFailureCount.WithLabelValues("false").Inc()
			st.Errors |= ErrChecksumBad
			if d.Policy.InlineMode() && d.Policy.ChecksumDrops() {
				if d.Drop != nil {
					d.Drop.RequestDrop()
				}
				metrics.ActiveDropRequestCount.Inc()
			}
		}
	}

	flags := h.Flags()

	// Step 6: flag classification. Events can fire alongside a successful
	// decode; none of them fail the decode by themselves.
	fpu := flags&(FlagFIN|FlagPSH|FlagURG) == (FlagFIN | FlagPSH | FlagURG)
	sar := flags&(FlagSYN|FlagACK|FlagRST) != 0
	switch {
	case fpu && sar:
		d.Sink.Emit(st, EvTCPXmas)
	case fpu:
		d.Sink.Emit(st, EvTCPNmapXmas)
	}

	if flags.SYN() {
		if flags&NoReserved == FlagSYN && h.Seq() == napthaSeq && ip.ID() == napthaIPID {
			d.Sink.Emit(st, EvDosNaptha)
		}
		if d.Multicast != nil && d.Multicast.IsMulticastSynTarget(ip.DstIP()) {
			d.Sink.Emit(st, EvSynToMulticast)
		}
		if flags.RST() {
			d.Sink.Emit(st, EvTCPSynRst)
		}
		if flags.FIN() {
			d.Sink.Emit(st, EvTCPSynFin)
		}
	}

	if !flags.SYN() && !flags.ACK() && !flags.RST() {
		d.Sink.Emit(st, EvTCPNoSynAckRst)
	}

	if (flags.FIN() || flags.PSH() || flags.URG()) && !flags.ACK() {
		d.Sink.Emit(st, EvTCPMustAck)
	}

	// Step 7.
	st.Header = &h
	st.SrcPort = h.SrcPort()
	st.DstPort = h.DstPort()

	// Step 8: option walk.
	if layerLen > HeaderLen {
		st.OptionCount = walk(raw[HeaderLen:layerLen], st.Options[:], st, d.Sink)
		for i := 0; i < st.OptionCount; i++ {
			metrics.OptionKindCount.WithLabelValues(optionKindLabel(st.Options[i].Kind)).Inc()
		}
	}

	// Step 9.
	st.Data = raw[layerLen:rawLen]
	dsize := rawLen - layerLen

	// Step 10.
	if flags.URG() && (dsize == 0 || int(h.Urgent()) > dsize) {
		d.Sink.Emit(st, EvTCPBadURP)
	}

	// Step 11.
	st.Protocols |= ProtoTCP
	if flags&NoReserved == FlagSYN && h.Seq() == shaftSynfloodSeq {
		d.Sink.Emit(st, EvTCPShaftSynflood)
	}
	if st.SrcPort == 0 || st.DstPort == 0 {
		d.Sink.Emit(st, EvTCPPortZero)
	}

	st.LayerLen = layerLen
	metrics.DecodeCount.WithLabelValues("ok").Inc()
	return true
}

func optionKindLabel(k OptionKind) string {
	return strconv.Itoa(int(k))
}
