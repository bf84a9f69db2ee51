package tcp

import "net"

// Mode distinguishes an inline sensor (on the data path, able to
// drop/modify packets) from a passive tap.
type Mode int

const (
	Passive Mode = iota
	Inline
)

// Policy is the config adaptor the decoder/encoder consult.
// It is deliberately narrow and deliberately an external collaborator:
// this package never reads a config file or flag directly, so a test can
// substitute any Policy it likes (see config.StaticPolicy in the sibling
// config package for the concrete production implementations).
type Policy interface {
	// InlineMode reports whether the sensor is on the data path.
	InlineMode() bool
	// ChecksumsEnabled reports whether TCP checksum verification should
	// run at all.
	ChecksumsEnabled() bool
	// ChecksumDrops reports whether a bad TCP checksum should trigger an
	// active-response drop request when the sensor is inline.
	ChecksumDrops() bool
}

// DropRequester is the active-response collaborator the decoder calls when
// policy says a bad-checksum packet should be dropped. Kept separate from
// Policy because it performs an action rather than answering a question.
type DropRequester interface {
	RequestDrop()
}

// MulticastChecker answers whether an IP address is a configured
// SYN-to-multicast target, backed by a codec's multicast watch list (the
// SYN_TO_MULTICAST rule). Implemented by *Multicast in this package.
type MulticastChecker interface {
	IsMulticastSynTarget(ip net.IP) bool
}
