package tcp

import (
	"net"
	"sync"
)

// defaultMulticastNets is the built-in SYN-to-multicast watch list: the
// well-known multicast ranges a SYN segment should never legitimately
// target.
var defaultMulticastNets = []string{
	"232.0.0.0/8",
	"233.0.0.0/8",
	"239.0.0.0/8",
}

// Multicast holds the parsed SYN-to-multicast watch list. It is shared,
// read-mostly state, but not a package-level global: NewTCPCodec builds one
// Multicast per codec. It is built
// once at plugin init (Pinit), consulted read-only by every decode
// goroutine thereafter, torn down at Pterm. There is no per-packet
// mutation, so no locking is needed on the hot path; the mutex here only
// guards (re)initialization.
type Multicast struct {
	mu   sync.RWMutex
	nets []*net.IPNet
}

// NewMulticast parses cidrs (falling back to defaultMulticastNets when nil)
// into a ready-to-use Multicast checker. Malformed entries are skipped
// rather than failing construction, matching the plugin's tolerance for a
// partially-bad config list.
func NewMulticast(cidrs []string) *Multicast {
	if cidrs == nil {
		cidrs = defaultMulticastNets
	}
	m := &Multicast{}
	m.reload(cidrs)
	return m
}

func (m *Multicast) reload(cidrs []string) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			continue
		}
		nets = append(nets, ipnet)
	}
	m.mu.Lock()
	m.nets = nets
	m.mu.Unlock()
}

// Pinit is the plugin-lifecycle hook a codec registry calls once before any
// packet is decoded (mirrors the codec's module Pinit/Pterm convention).
func (m *Multicast) Pinit() {
	m.mu.RLock()
	unbound := m.nets == nil
	m.mu.RUnlock()
	if unbound {
		m.reload(defaultMulticastNets)
	}
}

// Pterm releases the watch list. Kept as an explicit hook (rather than
// relying on GC) so the plugin-registration surface has a symmetric
// teardown point for the plugin-registration surface.
func (m *Multicast) Pterm() {
	m.mu.Lock()
	m.nets = nil
	m.mu.Unlock()
}

// IsMulticastSynTarget reports whether ip falls in the configured
// SYN-to-multicast watch list.
func (m *Multicast) IsMulticastSynTarget(ip net.IP) bool {
	for _, n := range m.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
