package tcp

import "github.com/google/gopacket/layers"

// Codec is the capability set a protocol-layer decoder publishes to the
// registry: a capability-set-plus-table-lookup stands in for dispatch
// against a Codec base class in a language without virtual dispatch.
type Codec interface {
	// ProtocolIDs returns every IP protocol number this codec decodes.
	ProtocolIDs() []layers.IPProtocol
	Decoder() *Decoder
}

// Descriptor is the plugin-registration record a codec publishes alongside
// its rule catalogue.
type Descriptor struct {
	Name       string
	ProtocolID layers.IPProtocol
	Rules      []Rule
}

// TCPDescriptor is this package's plugin descriptor.
var TCPDescriptor = Descriptor{
	Name:       "tcp",
	ProtocolID: layers.IPProtocolTCP,
	Rules:      RuleCatalogue[:],
}

// tcpCodec adapts a *Decoder and the codec's own multicast watch list to
// the Codec interface.
type tcpCodec struct {
	decoder   *Decoder
	multicast *Multicast
}

// NewTCPCodec builds the registry-facing codec. It owns the multicast
// watch list's lifecycle: Pinit/Pterm on the returned codec bind and
// release it, matching the source's ginit/gterm hooks.
func NewTCPCodec(sink EventSink, policy Policy, drop DropRequester, multicastCIDRs []string) *tcpCodec {
	mc := NewMulticast(multicastCIDRs)
	return &tcpCodec{
		decoder:   NewDecoder(sink, policy, mc, drop),
		multicast: mc,
	}
}

func (c *tcpCodec) ProtocolIDs() []layers.IPProtocol { return []layers.IPProtocol{layers.IPProtocolTCP} }
func (c *tcpCodec) Decoder() *Decoder                { return c.decoder }

// Pinit binds the multicast watch list. Call once before decoding any
// packet.
func (c *tcpCodec) Pinit() { c.multicast.Pinit() }

// Pterm releases the multicast watch list. Call once at shutdown.
func (c *tcpCodec) Pterm() { c.multicast.Pterm() }

// Registry is a protocol-id-keyed codec table: dispatch is by table
// lookup keyed on protocol id.
type Registry struct {
	codecs map[layers.IPProtocol]Codec
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[layers.IPProtocol]Codec)}
}

// Register adds codec under every protocol ID it advertises.
func (r *Registry) Register(codec Codec) {
	for _, id := range codec.ProtocolIDs() {
		r.codecs[id] = codec
	}
}

// Lookup returns the codec registered for id, if any.
func (r *Registry) Lookup(id layers.IPProtocol) (Codec, bool) {
	c, ok := r.codecs[id]
	return c, ok
}
