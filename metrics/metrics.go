// Package metrics defines prometheus metrics for the TCP decoder and
// encoder.
//
// All of them are safe for concurrent use by many packet-processing
// goroutines: counter increments are atomic, and looking up a labelled
// counter in a CounterVec takes only the vector's internal read lock.
// There is no cross-packet aggregation step; prometheus itself is the
// aggregation point.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecodeCount counts completed decode attempts.
	//
	// Provides metrics:
	//   tcpdecode_decode_count{result="ok|fail"}
	// Example usage:
	//   metrics.DecodeCount.WithLabelValues("ok").Inc()
	DecodeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpdecode_decode_count",
			Help: "Number of TCP segment decode attempts, by result.",
		}, []string{"result"})

	// EventCount counts anomaly events raised by the option walker and
	// header decoder, broken down by rule name.
	//
	// Provides metrics:
	//   tcpdecode_event_count{event="TCP_XMAS"}
	// Example usage:
	//   metrics.EventCount.WithLabelValues("TCP_XMAS").Inc()
	EventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpdecode_event_count",
			Help: "Number of decoder anomaly events raised, by rule name.",
		}, []string{"event"})

	// ChecksumFailureCount counts TCP checksum verification failures,
	// broken down by whether the packet was flagged unsure_encap.
	//
	// Provides metrics:
	//   tcpdecode_checksum_failure_count{unsure_encap="true|false"}
	ChecksumFailureCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpdecode_checksum_failure_count",
			Help: "Number of TCP checksum mismatches observed, by unsure_encap state.",
		}, []string{"unsure_encap"})

	// ActiveDropRequestCount counts the number of times the decoder asked
	// the host to drop a packet in response to policy (inline mode plus
	// checksum-drop policy).
	//
	// Provides metrics:
	//   tcpdecode_active_drop_request_count
	ActiveDropRequestCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcpdecode_active_drop_request_count",
			Help: "Number of active-response drop requests raised by the TCP decoder.",
		})

	// EncodeCount counts Encode and Update invocations, by entry point and
	// result; Format is not counted.
	//
	// Provides metrics:
	//   tcpdecode_encode_count{op="encode|update", result="ok|fail"}
	EncodeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpdecode_encode_count",
			Help: "Number of encoder operations, by entry point and result.",
		}, []string{"op", "result"})

	// OptionKindCount counts TCP options seen in the option walker, by
	// numeric kind. Useful for spotting evasive or unusual option usage
	// across a population of packets.
	//
	// Provides metrics:
	//   tcpdecode_option_kind_count{kind="8"}
	OptionKindCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcpdecode_option_kind_count",
			Help: "Number of TCP options seen, by option kind.",
		}, []string{"kind"})
)
