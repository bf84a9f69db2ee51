// Package tcp decodes and encodes TCP segments for a network
// intrusion-detection sensor. It validates the TCP header and option list
// against RFC rules and known-evasion patterns, fills in a shared per-packet
// decoded-state record, raises anomaly events through an injected sink, and
// can synthesize a RST or FIN/PUSH response segment with a correctly
// recomputed checksum.
//
// Header fields are read directly out of the caller's byte slice with
// explicit endian conversion (the slice need not be aligned); option records
// live in the caller's State and pseudoheaders are built in fixed-size
// scratch arrays, so no per-packet buffer is allocated. Decode is not
// entirely allocation-free: State.Header points at the Header view Decode
// builds, which moves that small value to the heap on each successful
// decode.
package tcp

import (
	"encoding/binary"

	"github.com/google/gopacket/layers"
)

// HeaderLen is the fixed 20-byte TCP header length, before options.
const HeaderLen = 20

// OptLenMax bounds the number of options this package will ever record for
// one segment (TCP_OPTLENMAX).
const OptLenMax = 40

// Flags is the 8-bit TCP flag octet.
type Flags uint8

const (
	FlagFIN Flags = 0x01
	FlagSYN Flags = 0x02
	FlagRST Flags = 0x04
	FlagPSH Flags = 0x08
	FlagACK Flags = 0x10
	FlagURG Flags = 0x20
	FlagECE Flags = 0x40
	FlagCWR Flags = 0x80

	// NoReserved masks off everything but the six "classic" RFC 793
	// flags; ECE/CWR are ECN bits added later and are excluded from some
	// anomaly classifications (the NAPTHA and shaft SYN-flood checks in
	// Decoder.Decode).
	NoReserved Flags = FlagFIN | FlagSYN | FlagRST | FlagPSH | FlagACK | FlagURG
)

func (f Flags) FIN() bool { return f&FlagFIN != 0 }
func (f Flags) SYN() bool { return f&FlagSYN != 0 }
func (f Flags) RST() bool { return f&FlagRST != 0 }
func (f Flags) PSH() bool { return f&FlagPSH != 0 }
func (f Flags) ACK() bool { return f&FlagACK != 0 }
func (f Flags) URG() bool { return f&FlagURG != 0 }
func (f Flags) ECE() bool { return f&FlagECE != 0 }
func (f Flags) CWR() bool { return f&FlagCWR != 0 }

// Header is a read-only view over a 20-byte-or-more TCP header living
// inside a caller-owned byte slice. It borrows; its lifetime is the
// lifetime of the underlying packet buffer.
type Header struct {
	raw []byte
}

// WrapHeader views raw as a TCP header. raw must be at least HeaderLen
// bytes; the caller is responsible for that bounds check (Decode performs
// it before calling this).
func WrapHeader(raw []byte) Header {
	return Header{raw: raw}
}

func (h Header) SrcPort() layers.TCPPort {
	return layers.TCPPort(binary.BigEndian.Uint16(h.raw[0:2]))
}

func (h Header) DstPort() layers.TCPPort {
	return layers.TCPPort(binary.BigEndian.Uint16(h.raw[2:4]))
}

func (h Header) Seq() uint32 {
	return binary.BigEndian.Uint32(h.raw[4:8])
}

func (h Header) Ack() uint32 {
	return binary.BigEndian.Uint32(h.raw[8:12])
}

// DataOffset returns the header length in bytes (data offset * 4).
func (h Header) DataOffset() int {
	return int(h.raw[12]>>4) * 4
}

func (h Header) Flags() Flags {
	return Flags(h.raw[13])
}

func (h Header) Window() uint16 {
	return binary.BigEndian.Uint16(h.raw[14:16])
}

func (h Header) Checksum() uint16 {
	return binary.BigEndian.Uint16(h.raw[16:18])
}

func (h Header) Urgent() uint16 {
	return binary.BigEndian.Uint16(h.raw[18:20])
}

// Options returns the raw option bytes: everything between the fixed
// header and DataOffset(). Caller must have already validated that
// DataOffset() <= len(h.raw).
func (h Header) Options() []byte {
	return h.raw[HeaderLen:h.DataOffset()]
}

// Bytes returns the full header region, fixed portion plus options.
func (h Header) Bytes() []byte {
	return h.raw[:h.DataOffset()]
}

// PutHeader writes a TCP header into buf (which must be at least HeaderLen
// bytes) in network byte order. It is used by the encoder to synthesize
// response segments.
func PutHeader(buf []byte, srcPort, dstPort layers.TCPPort, seq, ack uint32, dataOffsetWords uint8, flags Flags, window, urgent uint16) {
	binary.BigEndian.PutUint16(buf[0:2], uint16(srcPort))
	binary.BigEndian.PutUint16(buf[2:4], uint16(dstPort))
	binary.BigEndian.PutUint32(buf[4:8], seq)
	binary.BigEndian.PutUint32(buf[8:12], ack)
	buf[12] = dataOffsetWords << 4
	buf[13] = byte(flags)
	binary.BigEndian.PutUint16(buf[14:16], window)
	buf[16], buf[17] = 0, 0 // checksum filled in later
	binary.BigEndian.PutUint16(buf[18:20], urgent)
}

// PutChecksum writes cksum into the checksum field of a header built by
// PutHeader.
func PutChecksum(buf []byte, cksum uint16) {
	binary.BigEndian.PutUint16(buf[16:18], cksum)
}
