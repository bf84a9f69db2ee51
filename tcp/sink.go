package tcp

import (
	"log"
	"os"
	"time"

	"github.com/m-lab/go/logx"

	"github.com/netwatch-oss/tcpdecode/metrics"
)

// EventSink is the fire-and-forget event dispatcher the decoder and option
// walker call into. It is an external collaborator: the
// rule-evaluation/alerting machinery that actually does something with an
// event lives outside this package, same as the plugin/module
// registration surface and rule-keyword option objects this decoder treats
// as peers rather than owning.
type EventSink interface {
	Emit(st *State, id EventID)
}

// LogSink is a simple EventSink that rate-limits a diagnostic log line per
// event and bumps the corresponding prometheus counter, following the
// sparseLogger/logx.NewLogEvery pattern for high-volume,
// low-value log lines.
type LogSink struct {
	logger *log.Logger
	every  *logx.LogEvery
}

// NewLogSink builds a LogSink that logs at most once per interval across
// all event kinds (metrics still records every occurrence).
func NewLogSink(interval time.Duration) *LogSink {
	logger := log.New(os.Stderr, "tcpdecode: ", log.LstdFlags|log.Lshortfile)
	return &LogSink{
		logger: logger,
		every:  logx.NewLogEvery(logger, interval),
	}
}

func (s *LogSink) Emit(st *State, id EventID) {
	rule := RuleCatalogue[id]
	metrics.EventCount.WithLabelValues(rule.Name).Inc()
	s.every.Printf("%s: %s", rule.Name, rule.Description)
}

// CapturingSink records every emitted event ID in call order. Tests use it
// to assert on the exact anomaly sequence a decode produced.
type CapturingSink struct {
	Events []EventID
}

func (s *CapturingSink) Emit(_ *State, id EventID) {
	s.Events = append(s.Events, id)
}

// Has reports whether id was emitted at least once.
func (s *CapturingSink) Has(id EventID) bool {
	for _, e := range s.Events {
		if e == id {
			return true
		}
	}
	return false
}

// NopSink discards every event. Useful when a caller wants decode/encode
// without paying for event bookkeeping (benchmarks, fuzzing harnesses).
type NopSink struct{}

func (NopSink) Emit(*State, EventID) {}
