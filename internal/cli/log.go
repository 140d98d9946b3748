// Package cli implements the ruleviz command-line interface.
//
// The commands cover the whole path from a stimulus feed to an explanation:
// decoding and encoding prefix trees, checking alignments, laying out and
// rendering trials, previewing a feed in the terminal, serving trials over
// HTTP and running a full experiment session on stdin.
//
// # Commands
//
//   - decode, encode: convert between prefix encodings and trees
//   - analyze: print group membership, links and provenance for a trial
//   - layout: print the laid-out diagram as JSON
//   - render, animate: write SVG, PNG, PDF, JSON or tree artifacts
//   - preview: browse a feed interactively
//   - serve: expose trials and accept telemetry over HTTP
//   - session: run the experiment flow in the terminal
//   - cache: manage the artifact and stimulus cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 12 trials (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
