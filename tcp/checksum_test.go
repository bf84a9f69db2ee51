package tcp

import "testing"

func TestChecksumZeroOnCorrectValue(t *testing.T) {
	pseudo := []byte{
		10, 0, 0, 1,
		10, 0, 0, 2,
		0, 6,
		0, 20,
	}
	segment := make([]byte, HeaderLen)
	PutHeader(segment, 40000, 80, 1, 0, 5, FlagSYN, 8192, 0)
	cksum := Checksum(pseudo, segment)
	PutChecksum(segment, cksum)

	if got := Checksum(pseudo, segment); got != 0 {
		t.Fatalf("checksum over self-consistent segment = %#04x, want 0", got)
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	pseudo := []byte{10, 0, 0, 1, 10, 0, 0, 2, 0, 6, 0, 20}
	segment := make([]byte, HeaderLen)
	PutHeader(segment, 40000, 80, 1, 0, 5, FlagSYN, 8192, 0)
	cksum := Checksum(pseudo, segment)
	PutChecksum(segment, cksum)

	segment[0] ^= 0xff // corrupt source port
	if got := Checksum(pseudo, segment); got == 0 {
		t.Fatalf("checksum over corrupted segment = 0, want nonzero")
	}
}

func TestChecksumOddLength(t *testing.T) {
	// A single odd-length buffer must not panic and must be deterministic.
	b := []byte{0x01, 0x02, 0x03}
	got1 := Checksum(nil, b)
	got2 := Checksum(nil, b)
	if got1 != got2 {
		t.Fatalf("checksum not deterministic: %#04x vs %#04x", got1, got2)
	}
}
