package events

import (
	"fmt"

	"github.com/fibersched/fibersched/internal/logsink"
)

// LogHandler returns a Handler that formats each Event as a bracketed
// "[type] worker=N job=ID" line through sink.
func LogHandler(sink logsink.Sink) Handler {
	return func(e Event) {
		msg := fmt.Sprintf("[%s] worker=%d", e.Type, e.Worker)
		if e.JobID != "" {
			msg += fmt.Sprintf(" job=%s", e.JobID)
		}
		sink(logsink.Debug, msg)
	}
}
