package tcp

import (
	"net"
	"testing"

	"github.com/google/gopacket/layers"

	"github.com/netwatch-oss/tcpdecode/tcpip"
)

type alwaysOn struct{}

func (alwaysOn) InlineMode() bool       { return false }
func (alwaysOn) ChecksumsEnabled() bool { return true }
func (alwaysOn) ChecksumDrops() bool    { return false }

type checksumsOff struct{ alwaysOn }

func (checksumsOff) ChecksumsEnabled() bool { return false }

func newTestIP(srcLast, dstLast byte, id uint16) tcpip.IPContext {
	return tcpip.StaticContext{
		Ver:            4,
		Src:            net.IPv4(10, 0, 0, srcLast),
		Dst:            net.IPv4(10, 0, 0, dstLast),
		PayloadLen:     HeaderLen,
		Proto:          layers.IPProtocolTCP,
		TTL:            64,
		Identification: id,
	}
}

// buildSegment constructs a 20-byte TCP header (no options) with a correct
// checksum against the given IP context.
func buildSegment(ip tcpip.IPContext, srcPort, dstPort layers.TCPPort, seq, ack uint32, flags Flags, window uint16) []byte {
	seg := make([]byte, HeaderLen)
	PutHeader(seg, srcPort, dstPort, seq, ack, 5, flags, window, 0)
	var buf [40]byte
	pseudo := tcpip.PseudoHeader(buf[:], ip, len(seg))
	PutChecksum(seg, Checksum(pseudo, seg))
	return seg
}

func TestDecodeMinimumValidSYN(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := buildSegment(ip, 40000, 80, 1, 0, FlagSYN, 8192)

	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success")
	}
	if st.OptionCount != 0 {
		t.Fatalf("option count = %d, want 0", st.OptionCount)
	}
	if len(sink.Events) != 0 {
		t.Fatalf("unexpected events: %v", sink.Events)
	}
	if st.SrcPort != 40000 || st.DstPort != 80 {
		t.Fatalf("ports = %d/%d, want 40000/80", st.SrcPort, st.DstPort)
	}
	if len(st.Data) != 0 {
		t.Fatalf("dsize = %d, want 0", len(st.Data))
	}
	if st.Protocols&ProtoTCP == 0 {
		t.Fatalf("TCP protocol bit not set")
	}
}

func TestDecodeTooShort(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	for n := 0; n < HeaderLen; n++ {
		sink.Events = nil
		if ok := d.Decode(make([]byte, n), ip, st); ok {
			t.Fatalf("raw_len=%d: decode succeeded, want failure", n)
		}
		if !sink.Has(EvDgramLtTCPHdr) {
			t.Fatalf("raw_len=%d: expected DGRAM_LT_TCPHDR", n)
		}
		if st.Header != nil {
			t.Fatalf("raw_len=%d: header not cleared on failure", n)
		}
	}
}

func TestDecodeInvalidOffset(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	for words := uint8(0); words <= 4; words++ {
		sink.Events = nil
		seg := make([]byte, HeaderLen)
		PutHeader(seg, 1, 1, 0, 0, words, FlagSYN, 0, 0)
		if ok := d.Decode(seg, ip, st); ok {
			t.Fatalf("data_offset=%d: decode succeeded, want failure", words)
		}
		if !sink.Has(EvInvalidOffset) {
			t.Fatalf("data_offset=%d: expected INVALID_OFFSET", words)
		}
	}
}

func TestDecodeLargeOffset(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	seg := make([]byte, HeaderLen)
	PutHeader(seg, 1, 1, 0, 0, 10, FlagSYN, 0, 0) // offset = 40, raw_len = 20

	if ok := d.Decode(seg, ip, st); ok {
		t.Fatalf("decode succeeded, want failure")
	}
	if !sink.Has(EvLargeOffset) {
		t.Fatalf("expected LARGE_OFFSET")
	}
}

func TestDecodeXmas(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := buildSegment(ip, 1, 1, 0, 0, FlagFIN|FlagPSH|FlagURG|FlagSYN|FlagACK|FlagRST, 0)

	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success (XMAS is a soft event)")
	}
	if !sink.Has(EvTCPXmas) {
		t.Fatalf("expected TCP_XMAS")
	}
}

func TestDecodeNaptha(t *testing.T) {
	ip := newTestIP(1, 2, napthaIPID)
	seg := buildSegment(ip, 1, 1, napthaSeq, 0, FlagSYN, 0)

	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success")
	}
	if !sink.Has(EvDosNaptha) {
		t.Fatalf("expected DOS_NAPTHA")
	}
	if sink.Has(EvTCPSynFin) {
		t.Fatalf("TCP_SYN_FIN must not fire for a pure SYN segment")
	}
}

func TestDecodeChecksumBadUnsureEncapFailsSilently(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := buildSegment(ip, 1, 1, 0, 0, FlagSYN, 0)
	seg[16] ^= 0xff // corrupt checksum

	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}
	st.DecodeFlags = UnsureEncap

	if ok := d.Decode(seg, ip, st); ok {
		t.Fatalf("decode succeeded, want silent failure under unsure_encap")
	}
	if st.Errors&ErrChecksumBad != 0 {
		t.Fatalf("PKT_ERR_CKSUM_TCP must not be set under unsure_encap silent failure")
	}
	if len(sink.Events) != 0 {
		t.Fatalf("unsure_encap checksum failure must not emit any event, got %v", sink.Events)
	}
}

func TestDecodeChecksumDisabledSkipsVerification(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := make([]byte, HeaderLen)
	PutHeader(seg, 1, 1, 0, 0, 5, FlagSYN, 0, 0) // checksum left at zero, never computed

	sink := &CapturingSink{}
	d := NewDecoder(sink, checksumsOff{}, nil, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed with checksum verification disabled, want success")
	}
	if st.Errors&ErrChecksumBad != 0 {
		t.Fatalf("checksum-bad flag should not be set when verification is disabled")
	}
}

func TestDecodePortZero(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := buildSegment(ip, 0, 80, 0, 0, FlagSYN, 0)

	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success")
	}
	if !sink.Has(EvTCPPortZero) {
		t.Fatalf("expected TCP_PORT_ZERO")
	}
}

func TestDecodeFlagEvents(t *testing.T) {
	cases := []struct {
		name       string
		flags      Flags
		seq        uint32
		wantEvent  EventID
		wantAbsent EventID
	}{
		{"nmap xmas alone", FlagFIN | FlagPSH | FlagURG, 0, EvTCPNmapXmas, EvTCPXmas},
		{"syn rst", FlagSYN | FlagRST, 0, EvTCPSynRst, EvTCPXmas},
		{"syn fin", FlagSYN | FlagFIN, 0, EvTCPSynFin, EvTCPXmas},
		{"no syn ack rst", FlagPSH, 0, EvTCPNoSynAckRst, EvTCPXmas},
		{"must ack without ack", FlagFIN, 0, EvTCPMustAck, EvTCPXmas},
		{"shaft synflood", FlagSYN, shaftSynfloodSeq, EvTCPShaftSynflood, EvTCPXmas},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ip := newTestIP(1, 2, 0)
			seg := buildSegment(ip, 1, 1, c.seq, 0, c.flags, 0)

			sink := &CapturingSink{}
			d := NewDecoder(sink, alwaysOn{}, nil, nil)
			st := &State{}

			if ok := d.Decode(seg, ip, st); !ok {
				t.Fatalf("decode failed, want success")
			}
			if !sink.Has(c.wantEvent) {
				t.Fatalf("expected event %v, got %v", c.wantEvent, sink.Events)
			}
			if sink.Has(c.wantAbsent) {
				t.Fatalf("did not expect event %v, got %v", c.wantAbsent, sink.Events)
			}
		})
	}
}

func TestDecodeBadURP(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := make([]byte, HeaderLen)
	// URG set but no payload (dsize == 0): urgent pointer exceeds the
	// (empty) segment payload regardless of its value.
	PutHeader(seg, 1, 1, 0, 0, 5, FlagURG|FlagACK, 0, 10)
	var buf [40]byte
	pseudo := tcpip.PseudoHeader(buf[:], ip, len(seg))
	PutChecksum(seg, Checksum(pseudo, seg))

	sink := &CapturingSink{}
	d := NewDecoder(sink, alwaysOn{}, nil, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success")
	}
	if !sink.Has(EvTCPBadURP) {
		t.Fatalf("expected TCP_BAD_URP, got %v", sink.Events)
	}
}

func TestDecodeSynToMulticast(t *testing.T) {
	ip := tcpip.StaticContext{
		Ver:            4,
		Src:            net.IPv4(10, 0, 0, 1),
		Dst:            net.IPv4(239, 1, 2, 3),
		PayloadLen:     HeaderLen,
		Proto:          layers.IPProtocolTCP,
		TTL:            64,
		Identification: 0,
	}
	seg := buildSegment(ip, 1, 1, 0, 0, FlagSYN, 0)

	sink := &CapturingSink{}
	mc := NewMulticast(nil)
	d := NewDecoder(sink, alwaysOn{}, mc, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success")
	}
	if !sink.Has(EvSynToMulticast) {
		t.Fatalf("expected SYN_TO_MULTICAST, got %v", sink.Events)
	}
}

func TestDecodeNotSynToMulticast(t *testing.T) {
	ip := newTestIP(1, 2, 0)
	seg := buildSegment(ip, 1, 1, 0, 0, FlagSYN, 0)

	sink := &CapturingSink{}
	mc := NewMulticast(nil)
	d := NewDecoder(sink, alwaysOn{}, mc, nil)
	st := &State{}

	if ok := d.Decode(seg, ip, st); !ok {
		t.Fatalf("decode failed, want success")
	}
	if sink.Has(EvSynToMulticast) {
		t.Fatalf("unicast destination must not raise SYN_TO_MULTICAST, got %v", sink.Events)
	}
}
