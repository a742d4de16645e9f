// Package report provides the machine-readable timing report and the
// terminal styles shared by the flowerbox commands.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/unbound-force/flowerbox/internal/timebox"
)

// TimingReport is the JSON output of a timed command.
type TimingReport struct {
	Version   string    `json:"version"`
	Name      string    `json:"name"`
	Command   []string  `json:"command"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Elapsed   string    `json:"elapsed"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// NewTimingReport builds the report for rec. A nil command is reported
// as an empty array.
func NewTimingReport(rec timebox.Record, command []string) TimingReport {
	if command == nil {
		command = []string{}
	}
	return TimingReport{
		Name:      rec.Name,
		Command:   command,
		Start:     rec.Start,
		End:       rec.End,
		Elapsed:   timebox.FormatElapsed(rec.Elapsed()),
		ElapsedMS: rec.Elapsed().Milliseconds(),
	}
}

// WriteJSON writes rpt as indented JSON, stamped with version.
func WriteJSON(w io.Writer, rpt TimingReport, version string) error {
	rpt.Version = version
	if rpt.Command == nil {
		rpt.Command = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rpt)
}
