// Package tcpip provides the narrow interface the TCP decoder and encoder
// use to reach the IP layer, plus the IPv4/IPv6 pseudoheader builders the
// checksum kernel needs.
//
// Full IP-layer decoding is out of scope for this package: it is somebody
// else's job, already done well by
// github.com/google/gopacket. IPContext is the seam between that job and
// this one, and the adapters in this file are thin wrappers over
// gopacket/layers so callers never have to hand-decode an IP header just to
// talk to the TCP layer.
package tcpip

import (
	"encoding/binary"
	"net"

	"github.com/google/gopacket/layers"
)

// IPContext is everything the TCP decoder/encoder need from the IP layer
// that carries a TCP segment: addresses (for the pseudoheader and the
// multicast-destination test), the payload length the IP layer reported
// (the header decoder takes raw_len from len(raw), not from here), and the
// next-protocol/hop-limit
// fields the decoder may want for diagnostics.
type IPContext interface {
	// Version returns 4 or 6.
	Version() uint8
	// SrcIP and DstIP return the IP-layer source and destination addresses.
	SrcIP() net.IP
	DstIP() net.IP
	// PayloadLength returns the number of bytes following the IP header,
	// i.e. the TCP segment length the IP layer reported.
	PayloadLength() int
	// NextProtocol returns the IP protocol number carried (TCP = 6).
	NextProtocol() layers.IPProtocol
	// HopLimit returns TTL (v4) or hop limit (v6).
	HopLimit() uint8
	// ID returns the IPv4 identification field, used by the NAPTHA
	// signature check. IPv6 has no equivalent field;
	// v6Context always returns zero.
	ID() uint16
}

// FromIPv4 adapts a decoded gopacket IPv4 layer to an IPContext.
func FromIPv4(ip *layers.IPv4) IPContext {
	return v4Context{ip}
}

// FromIPv6 adapts a decoded gopacket IPv6 layer to an IPContext.
func FromIPv6(ip *layers.IPv6) IPContext {
	return v6Context{ip}
}

type v4Context struct{ ip *layers.IPv4 }

func (c v4Context) Version() uint8                  { return 4 }
func (c v4Context) SrcIP() net.IP                   { return c.ip.SrcIP }
func (c v4Context) DstIP() net.IP                   { return c.ip.DstIP }
func (c v4Context) PayloadLength() int              { return int(c.ip.Length) - int(c.ip.IHL)*4 }
func (c v4Context) NextProtocol() layers.IPProtocol { return c.ip.Protocol }
func (c v4Context) HopLimit() uint8                 { return c.ip.TTL }
func (c v4Context) ID() uint16                      { return c.ip.Id }

type v6Context struct{ ip *layers.IPv6 }

func (c v6Context) Version() uint8                  { return 6 }
func (c v6Context) SrcIP() net.IP                   { return c.ip.SrcIP }
func (c v6Context) DstIP() net.IP                   { return c.ip.DstIP }
func (c v6Context) PayloadLength() int              { return int(c.ip.Length) }
func (c v6Context) NextProtocol() layers.IPProtocol { return c.ip.NextHeader }
func (c v6Context) HopLimit() uint8                 { return c.ip.HopLimit }
func (c v6Context) ID() uint16                      { return 0 }

// StaticContext is a plain IPContext for tests and the encoder, where there
// is no gopacket layer handy (e.g. when synthesizing a response from
// scratch, or in table-driven unit tests).
type StaticContext struct {
	Ver            uint8
	Src, Dst       net.IP
	PayloadLen     int
	Proto          layers.IPProtocol
	TTL            uint8
	Identification uint16
}

func (c StaticContext) Version() uint8                  { return c.Ver }
func (c StaticContext) SrcIP() net.IP                   { return c.Src }
func (c StaticContext) DstIP() net.IP                   { return c.Dst }
func (c StaticContext) PayloadLength() int              { return c.PayloadLen }
func (c StaticContext) NextProtocol() layers.IPProtocol { return c.Proto }
func (c StaticContext) HopLimit() uint8                 { return c.TTL }
func (c StaticContext) ID() uint16                      { return c.Identification }

// PseudoHeaderV4 builds the 12-byte IPv4 pseudoheader used by the TCP
// checksum kernel (RFC 793), into caller-supplied scratch space so the hot
// path performs no allocation. buf must be at least 12 bytes.
func PseudoHeaderV4(buf []byte, src, dst net.IP, length uint16) []byte {
	buf = buf[:12]
	copy(buf[0:4], src.To4())
	copy(buf[4:8], dst.To4())
	buf[8] = 0
	buf[9] = byte(layers.IPProtocolTCP)
	binary.BigEndian.PutUint16(buf[10:12], length)
	return buf
}

// PseudoHeaderV6 builds the 40-byte IPv6 pseudoheader used by the TCP
// checksum kernel (RFC 2460 §8.1), into caller-supplied scratch space.
// buf must be at least 40 bytes.
func PseudoHeaderV6(buf []byte, src, dst net.IP, length uint32) []byte {
	buf = buf[:40]
	copy(buf[0:16], src.To16())
	copy(buf[16:32], dst.To16())
	binary.BigEndian.PutUint32(buf[32:36], length)
	buf[36], buf[37], buf[38] = 0, 0, 0
	buf[39] = byte(layers.IPProtocolTCP)
	return buf
}

// PseudoHeader builds the appropriate pseudoheader for ip into buf, which
// must be large enough for the chosen IP version (12 bytes for v4, 40 for
// v6); a 40-byte buf always suffices for either.
func PseudoHeader(buf []byte, ip IPContext, tcpLength int) []byte {
	if ip.Version() == 6 {
		return PseudoHeaderV6(buf, ip.SrcIP(), ip.DstIP(), uint32(tcpLength))
	}
	return PseudoHeaderV4(buf, ip.SrcIP(), ip.DstIP(), uint16(tcpLength))
}

// IsMulticast reports whether ip falls within a multicast range. It is a
// thin net.IP convenience; the SYN_TO_MULTICAST check does not call it but
// consults the configured watch list in the tcp package (see
// tcp.Multicast.IsMulticastSynTarget), since that list is decoder state,
// not an IP-layer concern.
func IsMulticast(ip net.IP) bool {
	return ip.IsMulticast()
}
