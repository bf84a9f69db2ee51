package tcp

import "encoding/binary"

// Checksum computes the standard one's-complement 16-bit Internet checksum
// (RFC 1071) over pseudo followed by segment, folding carries and returning
// the complement. A segment whose on-wire checksum field already holds the
// sender's value re-checksums to zero.
//
// This is a pure function: it never allocates and never errors. pseudo and
// segment are summed separately, each starting on a word boundary; an odd
// trailing byte of either is taken as the high-order byte of a word whose
// low-order byte is zero. With the 12- and 40-byte pseudoheaders this
// package builds, the result equals summing pseudo and segment as one
// stream.
func Checksum(pseudo, segment []byte) uint16 {
	var sum uint32
	sum = sumBytes(pseudo, sum)
	sum = sumBytes(segment, sum)
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// sumBytes accumulates the one's-complement sum of b (treated as a stream
// of big-endian 16-bit words) into acc, without requiring b's length to be
// even and without allocating.
func sumBytes(b []byte, acc uint32) uint32 {
	n := len(b)
	i := 0
	for ; i+1 < n; i += 2 {
		acc += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if i < n {
		// Odd trailing byte: zero-pad on the low-order byte, i.e. treat
		// it as the high byte of a 16-bit word.
		acc += uint32(b[i]) << 8
	}
	return acc
}

// VerifyTCP re-checksums segment (header+payload, with the checksum field
// still populated) under the given pseudoheader and returns the result,
// which is zero exactly when the checksum already present verifies.
func VerifyTCP(pseudo, segment []byte) uint16 {
	return Checksum(pseudo, segment)
}
