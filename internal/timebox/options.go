package timebox

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/unbound-force/flowerbox/internal/flowerbox"
)

// DefaultDateTimeFormat is the layout used for the start and end
// timestamps, e.g. "Mon Jun 29 2020 18:22:48".
const DefaultDateTimeFormat = "Mon Jan 02 2006 15:04:05"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using time.Now.
type RealClock struct{}

// Now returns the current time, including its monotonic reading.
func (RealClock) Now() time.Time { return time.Now() }

var _ Clock = RealClock{}

// Option configures Wrap, With, Run and NewHeader.
type Option func(*config)

// enabled is either a fixed value or a predicate consulted on every
// call.
type enabled struct {
	fixed bool
	pred  func() bool
}

func (e enabled) resolve() bool {
	if e.pred != nil {
		return e.pred()
	}
	return e.fixed
}

// staticallyOff reports whether announcements can never be produced.
func (e enabled) staticallyOff() bool {
	return e.pred == nil && !e.fixed
}

type config struct {
	layout     string
	end        string
	out        io.Writer
	flush      bool
	enabled    enabled
	name       string
	clock      Clock
	style      *lipgloss.Style
	onComplete func(Record)
}

func newConfig(opts []Option) *config {
	c := &config{
		layout:  DefaultDateTimeFormat,
		end:     flowerbox.Newline,
		enabled: enabled{fixed: true},
		clock:   RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// renderOptions resolves the sink at call time so that a replaced
// os.Stdout is honoured.
func (c *config) renderOptions() flowerbox.Options {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	return flowerbox.Options{
		End:         flowerbox.End(c.end),
		Out:         out,
		Flush:       c.flush,
		BorderStyle: c.style,
	}
}

// WithDateTimeFormat sets the time.Format layout of the start and end
// timestamps.
func WithDateTimeFormat(layout string) Option {
	return func(c *config) {
		if layout != "" {
			c.layout = layout
		}
	}
}

// WithEnd sets the terminator written after each row of a box. An
// empty end writes the rows back to back.
func WithEnd(end string) Option {
	return func(c *config) { c.end = end }
}

// WithOutput sets the sink for the announcements. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithFlush flushes the sink after every row when it implements
// flowerbox.Flusher.
func WithFlush(flush bool) Option {
	return func(c *config) { c.flush = flush }
}

// WithEnabled turns the announcements on or off for every call. When
// off, Wrap returns the function unchanged.
func WithEnabled(on bool) Option {
	return func(c *config) { c.enabled = enabled{fixed: on} }
}

// WithEnabledFunc makes the announcements conditional on pred, which
// is evaluated on every call of the wrapped function.
func WithEnabledFunc(pred func() bool) Option {
	return func(c *config) {
		if pred == nil {
			c.enabled = enabled{fixed: true}
			return
		}
		c.enabled = enabled{pred: pred}
	}
}

// WithName overrides the function name shown in the announcements.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithClock replaces the time source.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithBorderStyle styles the asterisk borders of both boxes.
func WithBorderStyle(style lipgloss.Style) Option {
	return func(c *config) { c.style = &style }
}

// WithOnComplete registers fn to receive the timing of every call that
// completed and printed its end box.
func WithOnComplete(fn func(Record)) Option {
	return func(c *config) { c.onComplete = fn }
}
