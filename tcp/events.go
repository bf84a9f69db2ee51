package tcp

// EventID identifies one entry in the rule catalogue. Values are
// stable once assigned: they are referenced by RuleCatalogue index and may
// be persisted by callers (e.g. as a metrics label), so the numbering must
// not be reshuffled.
type EventID int

const (
	EvDgramLtTCPHdr EventID = iota
	EvInvalidOffset
	EvLargeOffset
	EvTCPOptBadLen
	EvTCPOptTruncated
	EvTCPOptTTCP
	EvTCPOptObsolete
	EvTCPOptExperimental
	EvTCPOptWScaleInvalid
	EvTCPXmas
	EvTCPNmapXmas
	EvTCPBadURP
	EvTCPSynFin
	EvTCPSynRst
	EvTCPMustAck
	EvTCPNoSynAckRst
	EvTCPShaftSynflood
	EvTCPPortZero
	EvDosNaptha
	EvSynToMulticast

	evCount
)

// Rule is one rule-catalogue entry: a bit-exact identifier plus a
// human-readable description for logging/alerting.
type Rule struct {
	ID          EventID
	Name        string
	Description string
}

// RuleCatalogue is the plugin's rule table, one entry per event
// ID, in declaration order. Decode and Encode never read this table; it is
// published alongside the "tcp" codec descriptor for the
// plugin-registration surface (an external collaborator), and LogSink uses
// it for event names and descriptions.
var RuleCatalogue = [evCount]Rule{
	EvDgramLtTCPHdr:       {EvDgramLtTCPHdr, "DGRAM_LT_TCPHDR", "TCP header length is less than 20 bytes"},
	EvInvalidOffset:       {EvInvalidOffset, "INVALID_OFFSET", "TCP data offset is less than 5 (20 bytes)"},
	EvLargeOffset:         {EvLargeOffset, "LARGE_OFFSET", "TCP data offset exceeds the captured segment length"},
	EvTCPOptBadLen:        {EvTCPOptBadLen, "TCPOPT_BADLEN", "TCP option has a length inconsistent with its kind"},
	EvTCPOptTruncated:     {EvTCPOptTruncated, "TCPOPT_TRUNCATED", "TCP option list is truncated"},
	EvTCPOptTTCP:          {EvTCPOptTTCP, "TCPOPT_TTCP", "TCP option list uses deprecated T/TCP (CC.ECHO)"},
	EvTCPOptObsolete:      {EvTCPOptObsolete, "TCPOPT_OBSOLETE", "TCP option list uses an obsolete option"},
	EvTCPOptExperimental:  {EvTCPOptExperimental, "TCPOPT_EXPERIMENTAL", "TCP option list uses an experimental option"},
	EvTCPOptWScaleInvalid: {EvTCPOptWScaleInvalid, "TCPOPT_WSCALE_INVALID", "TCP window scale shift count exceeds 14"},
	EvTCPXmas:             {EvTCPXmas, "TCP_XMAS", "TCP segment has FIN, PSH and URG set along with SYN, ACK, or RST"},
	EvTCPNmapXmas:         {EvTCPNmapXmas, "TCP_NMAP_XMAS", "TCP segment has only FIN, PSH and URG set (nmap XMAS scan)"},
	EvTCPBadURP:           {EvTCPBadURP, "TCP_BAD_URP", "TCP urgent pointer exceeds the segment payload size"},
	EvTCPSynFin:           {EvTCPSynFin, "TCP_SYN_FIN", "TCP segment has both SYN and FIN set"},
	EvTCPSynRst:           {EvTCPSynRst, "TCP_SYN_RST", "TCP segment has both SYN and RST set"},
	EvTCPMustAck:          {EvTCPMustAck, "TCP_MUST_ACK", "TCP segment has FIN, PSH, or URG set without ACK"},
	EvTCPNoSynAckRst:      {EvTCPNoSynAckRst, "TCP_NO_SYN_ACK_RST", "TCP segment has none of SYN, ACK, or RST set"},
	EvTCPShaftSynflood:    {EvTCPShaftSynflood, "TCP_SHAFT_SYNFLOOD", "TCP segment matches the shaft SYN flood tool signature"},
	EvTCPPortZero:         {EvTCPPortZero, "TCP_PORT_ZERO", "TCP source or destination port is zero"},
	EvDosNaptha:           {EvDosNaptha, "DOS_NAPTHA", "TCP segment matches the NAPTHA DoS sequence/IP-id signature"},
	EvSynToMulticast:      {EvSynToMulticast, "SYN_TO_MULTICAST", "TCP SYN segment is addressed to a multicast destination"},
}
