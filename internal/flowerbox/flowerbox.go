// Package flowerbox renders lines of text inside an asterisk border.
//
//	***************************
//	* This is my test message *
//	***************************
package flowerbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Border is the character used for every border cell.
const Border = "*"

// ErrInvalidInput is returned when there are no lines to render.
var ErrInvalidInput = errors.New("flowerbox: no lines to render")

// Flusher is implemented by sinks that buffer output, such as
// *bufio.Writer.
type Flusher interface {
	Flush() error
}

// Options configures Render.
type Options struct {
	// End terminates each row of the box. A nil End means "\n"; point
	// it at "" to write the rows back to back.
	End *string

	// Out receives the rendered rows.
	// Defaults to os.Stdout.
	Out io.Writer

	// Flush flushes Out after every row when Out implements Flusher.
	Flush bool

	// BorderStyle, when set, is applied to the border characters only.
	BorderStyle *lipgloss.Style
}

// Newline is the default row terminator.
const Newline = "\n"

// End returns a pointer to end for use in Options.
func End(end string) *string {
	return &end
}

func (o Options) withDefaults() Options {
	if o.End == nil {
		o.End = End(Newline)
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}

// Width returns the width of the box for lines: the widest line plus
// two border characters and two padding spaces. See TextWidth for how
// a line is measured.
func Width(lines []string) (int, error) {
	if len(lines) == 0 {
		return 0, ErrInvalidInput
	}
	widest := 0
	for _, l := range lines {
		if w := TextWidth(l); w > widest {
			widest = w
		}
	}
	return widest + 4, nil
}

// TextWidth returns the width of s in terminal cells. Control
// characters such as tabs count as one cell each, so a row holding them
// stays as long as the border.
func TextWidth(s string) int {
	w := 0
	for {
		i := strings.IndexFunc(s, unicode.IsControl)
		if i < 0 {
			return w + lipgloss.Width(s)
		}
		w += lipgloss.Width(s[:i]) + 1
		_, size := utf8.DecodeRuneInString(s[i:])
		s = s[i+size:]
	}
}

// Format returns the rows of the box without terminators: the top
// border, one row per line and the bottom border.
func Format(lines []string) ([]string, error) {
	return frame(lines, func(s string) string { return s })
}

func frame(lines []string, paint func(string) string) ([]string, error) {
	width, err := Width(lines)
	if err != nil {
		return nil, err
	}

	edge := paint(strings.Repeat(Border, width))
	left := paint(Border) + " "
	right := " " + paint(Border)

	rows := make([]string, 0, len(lines)+2)
	rows = append(rows, edge)
	for _, l := range lines {
		pad := strings.Repeat(" ", width-TextWidth(l)-4)
		rows = append(rows, left+l+pad+right)
	}
	rows = append(rows, edge)
	return rows, nil
}

// Render writes lines to opts.Out as a flower box. A blank line is
// always written first so the box starts on a fresh line.
func Render(lines []string, opts Options) error {
	opts = opts.withDefaults()

	paint := func(s string) string { return s }
	if opts.BorderStyle != nil {
		style := *opts.BorderStyle
		paint = func(s string) string { return style.Render(s) }
	}

	rows, err := frame(lines, paint)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(opts.Out, "\n"); err != nil {
		return fmt.Errorf("writing flower box: %w", err)
	}
	for _, row := range rows {
		if _, err := io.WriteString(opts.Out, row+*opts.End); err != nil {
			return fmt.Errorf("writing flower box: %w", err)
		}
		if !opts.Flush {
			continue
		}
		if f, ok := opts.Out.(Flusher); ok {
			if err := f.Flush(); err != nil {
				return fmt.Errorf("flushing flower box: %w", err)
			}
		}
	}
	return nil
}

// Print renders lines to standard output with default options.
func Print(lines ...string) error {
	return Render(lines, Options{})
}
