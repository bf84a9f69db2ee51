package tcp

import "github.com/google/gopacket/layers"

// OptionKind is a TCP option kind byte. It reuses gopacket's
// layers.TCPOptionKind type (and its first sixteen constants, kinds 0-15)
// and extends it with the rest of the IANA TCP option kind registry that
// this decoder's option walker must classify but that gopacket's own
// enumeration (aimed at serialization, not anomaly detection) does not
// carry.
type OptionKind = layers.TCPOptionKind

const (
	OptKindEOL            OptionKind = layers.TCPOptionKindEndList
	OptKindNOP            OptionKind = layers.TCPOptionKindNop
	OptKindMSS            OptionKind = layers.TCPOptionKindMSS
	OptKindWScale         OptionKind = layers.TCPOptionKindWindowScale
	OptKindSAckOK         OptionKind = layers.TCPOptionKindSACKPermitted
	OptKindSAck           OptionKind = layers.TCPOptionKindSACK
	OptKindEcho           OptionKind = layers.TCPOptionKindEcho
	OptKindEchoReply      OptionKind = layers.TCPOptionKindEchoReply
	OptKindTimestamp      OptionKind = layers.TCPOptionKindTimestamps
	OptKindPartialPerm    OptionKind = layers.TCPOptionKindPartialOrderConnectionPermitted
	OptKindPartialSvc     OptionKind = layers.TCPOptionKindPartialOrderServiceProfile
	OptKindCC             OptionKind = layers.TCPOptionKindCC
	OptKindCCNew          OptionKind = layers.TCPOptionKindCCNew
	OptKindCCEcho         OptionKind = layers.TCPOptionKindCCEcho
	OptKindAltCsum        OptionKind = layers.TCPOptionKindAltChecksum
	OptKindAltCsumData    OptionKind = layers.TCPOptionKindAltChecksumData

	// Kinds 16 and above are not in gopacket's enumeration.
	OptKindSkeeter       OptionKind = 16
	OptKindBubba         OptionKind = 17
	OptKindTrailerCsum   OptionKind = 18
	OptKindMD5Signature  OptionKind = 19
	OptKindSCPSCaps      OptionKind = 20
	OptKindSelNegAck     OptionKind = 21
	OptKindRecordBound   OptionKind = 22
	OptKindCorruption    OptionKind = 23
	OptKindSNAP          OptionKind = 24
	OptKindUnassigned    OptionKind = 25
	OptKindAuth          OptionKind = 29
)

// Record is a decoded TCP option: kind, payload length (on-wire length
// minus the two kind/length bytes; zero for NOP/EOL), and an optional byte
// slice borrowed from the segment.
type Record struct {
	Kind OptionKind
	Len  uint8
	Data []byte
}

// validateStatus is the validate_option outcome.
type validateStatus int

const (
	valOK validateStatus = iota
	valBadLen
	valTrunc
)

// validate implements the validate_option contract. expectedLen follows
// the convention: 0 or 1 is impossible (always bad), a
// positive value is an exact required length, a negative value means
// "variable length, at least 2".
//
// opt runs from the kind byte to the end of the option region, so len(opt)
// bounds every check. It returns the status and, on valOK, the number of
// bytes to skip (the on-wire option length) and the payload slice (nil if
// the option carries no payload beyond kind+length).
func validate(opt []byte, expectedLen int) (status validateStatus, skip int, payload []byte) {
	if expectedLen == 0 || expectedLen == 1 {
		return valBadLen, 0, nil
	}
	if len(opt) < 2 {
		// The kind byte sits at the very end with no length byte behind it.
		return valTrunc, 0, nil
	}
	lenByte := int(opt[1])
	if expectedLen >= 2 {
		if lenByte != expectedLen {
			return valBadLen, 0, nil
		}
		if len(opt) < expectedLen {
			return valTrunc, 0, nil
		}
	} else {
		if lenByte < 2 {
			return valBadLen, 0, nil
		}
		if len(opt) < lenByte {
			return valTrunc, 0, nil
		}
	}
	skip = lenByte
	if skip > 2 {
		payload = opt[2:skip]
	}
	return valOK, skip, payload
}

// walk iterates the option region (layer_len - 20 bytes), dispatching on
// kind per the option-kind table, filling dst (capacity OptLenMax) with decoded
// records, and returning the count of records cleanly parsed before any
// error. It reports the semantic flags accumulated along the way and emits
// the resulting anomaly events (or the validator error) through sink.
func walk(data []byte, dst []Record, st *State, sink EventSink) int {
	var sawExperimental, sawObsolete, sawTTCP bool
	count := 0

	for len(data) > 0 && count < OptLenMax {
		kind := OptionKind(data[0])

		switch kind {
		case OptKindEOL:
			dst[count] = Record{Kind: kind}
			count++
			data = data[1:]
			goto done
		case OptKindNOP:
			dst[count] = Record{Kind: kind}
			count++
			data = data[1:]
			continue
		}

		var status validateStatus
		var skip int
		var payload []byte

		switch kind {
		case OptKindMSS:
			status, skip, payload = validate(data, 4)
		case OptKindWScale:
			status, skip, payload = validate(data, 3)
		case OptKindSAckOK:
			status, skip, payload = validate(data, 2)
		case OptKindSAck:
			status, skip, payload = validate(data, -1)
			if status == valOK && payload == nil {
				status, skip, payload = valBadLen, 0, nil
			}
		case OptKindEcho, OptKindEchoReply:
			status, skip, payload = validate(data, 6)
		case OptKindTimestamp:
			status, skip, payload = validate(data, 10)
		case OptKindCC, OptKindCCNew, OptKindCCEcho:
			status, skip, payload = validate(data, 6)
		case OptKindMD5Signature:
			status, skip, payload = validate(data, 18)
		case OptKindAuth:
			status, skip, payload = validate(data, -1)
			if status == valOK && skip < 4 {
				status, skip, payload = valBadLen, 0, nil
			}
		default:
			// TRAILER_CSUM, SCPS family, SKEETER/BUBBA/UNASSIGNED, and any
			// unrecognized kind are all variable-length.
			status, skip, payload = validate(data, -1)
		}

		if status != valOK {
			if status == valBadLen {
				sink.Emit(st, EvTCPOptBadLen)
			} else {
				sink.Emit(st, EvTCPOptTruncated)
			}
			return count
		}

		dst[count] = Record{Kind: kind, Len: uint8(skip - 2), Data: payload}
		count++

		switch kind {
		case OptKindWScale:
			if len(payload) > 0 && payload[0] > 14 {
				sink.Emit(st, EvTCPOptWScaleInvalid)
			}
		case OptKindEcho, OptKindEchoReply, OptKindMD5Signature:
			sawObsolete = true
		case OptKindCCEcho:
			sawTTCP = true
		case OptKindSkeeter, OptKindBubba, OptKindUnassigned:
			sawObsolete = true
		case OptKindTrailerCsum, OptKindSCPSCaps, OptKindSelNegAck,
			OptKindRecordBound, OptKindCorruption, OptKindPartialPerm,
			OptKindPartialSvc, OptKindAltCsum, OptKindSNAP:
			sawExperimental = true
		case OptKindMSS, OptKindSAckOK, OptKindSAck, OptKindTimestamp,
			OptKindCC, OptKindCCNew, OptKindAuth, OptKindEOL, OptKindNOP:
			// No semantic flag.
		default:
			sawExperimental = true
		}

		data = data[skip:]
	}

done:
	switch {
	case sawExperimental:
		sink.Emit(st, EvTCPOptExperimental)
	case sawObsolete:
		sink.Emit(st, EvTCPOptObsolete)
	case sawTTCP:
		sink.Emit(st, EvTCPOptTTCP)
	}
	return count
}
