// Package logsink models the scheduler's log facility as an external
// collaborator: a simple log(level, message) sink the core never owns.
// The Manager takes a Sink in its configuration; the default writes
// nowhere, so logging stays opt-in for callers that want it.
package logsink

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Sink receives one log line at a time. Implementations must be safe for
// concurrent use — every worker and fiber goroutine may call it.
type Sink func(level Level, msg string)

// Nop discards every line. The Manager uses it when no WithLogSink option
// is given.
func Nop(Level, string) {}

// WriterConfig configures a Writer sink.
type WriterConfig struct {
	// Out is where lines are written. Defaults to nil, in which case
	// NewWriter panics — callers must supply a destination.
	Out io.Writer

	// Min filters out lines below this level.
	Min Level

	// TimeFormat is the timestamp layout prefixed to each line. Defaults
	// to time.RFC3339.
	TimeFormat string
}

// NewWriter returns a Sink that formats lines "[time] LEVEL message\n" to
// cfg.Out.
func NewWriter(cfg WriterConfig) Sink {
	if cfg.Out == nil {
		panic("logsink: NewWriter requires a non-nil Out")
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	var mu sync.Mutex
	return func(level Level, msg string) {
		if level < cfg.Min {
			return
		}
		var buf strings.Builder
		buf.WriteString("[")
		buf.WriteString(time.Now().Format(cfg.TimeFormat))
		buf.WriteString("] ")
		buf.WriteString(level.String())
		buf.WriteString(" ")
		buf.WriteString(msg)
		buf.WriteString("\n")

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(cfg.Out, buf.String())
	}
}
