package timebox

import (
	"fmt"
	"time"

	"github.com/unbound-force/flowerbox/internal/flowerbox"
)

// Record holds the start and end time of one timed call.
type Record struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Elapsed returns End minus Start.
func (r Record) Elapsed() time.Duration {
	return r.End.Sub(r.Start)
}

// Header prints the start and end announcements of a single call and
// keeps its timestamps. A Header must not be shared between
// concurrent calls.
type Header struct {
	cfg   *config
	name  string
	start time.Time
	end   time.Time
}

// NewHeader returns a Header announcing name.
func NewHeader(name string, opts ...Option) *Header {
	return newHeader(name, newConfig(opts))
}

func newHeader(name string, cfg *config) *Header {
	return &Header{cfg: cfg, name: name}
}

// PrintStart records the start time and prints
//
//	Starting <name> on <start>
func (h *Header) PrintStart() error {
	h.start = h.cfg.clock.Now()
	msg := fmt.Sprintf("Starting %s on %s", h.name, h.start.Format(h.cfg.layout))
	return flowerbox.Render([]string{msg}, h.cfg.renderOptions())
}

// PrintEnd records the end time and prints the end time together with
// the time elapsed since PrintStart.
func (h *Header) PrintEnd() error {
	h.end = h.cfg.clock.Now()
	msgs := []string{
		fmt.Sprintf("Ending %s on %s", h.name, h.end.Format(h.cfg.layout)),
		"Elapsed time: " + FormatElapsed(h.end.Sub(h.start)),
	}
	return flowerbox.Render(msgs, h.cfg.renderOptions())
}

// Record returns the timestamps captured so far.
func (h *Header) Record() Record {
	return Record{Name: h.name, Start: h.start, End: h.end}
}

// FormatElapsed formats d as H:MM:SS.ffffff. The fraction is omitted
// when d is a whole number of seconds and durations of a day or more
// are prefixed with the day count, e.g. "1 day, 2:03:04.000005".
func FormatElapsed(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Truncate(time.Microsecond)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	micros := (d - seconds*time.Second) / time.Microsecond

	s := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	if micros != 0 {
		s += fmt.Sprintf(".%06d", micros)
	}
	switch {
	case days == 1:
		s = "1 day, " + s
	case days > 1:
		s = fmt.Sprintf("%d days, %s", days, s)
	}
	return sign + s
}
