package timebox

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// stepClock returns base, then base+step, base+2*step, ...
type stepClock struct {
	base time.Time
	step time.Duration
	n    int
}

func (c *stepClock) Now() time.Time {
	t := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{
		base: time.Date(2020, time.June, 29, 18, 22, 48, 0, time.UTC),
		step: step,
	}
}

func addOne(n int) int { return n + 1 }

func TestWrap_DefaultOutput(t *testing.T) {
	var buf bytes.Buffer
	clock := newStepClock(2*time.Second + 1842*time.Microsecond)

	wrapped := Wrap(addOne, WithOutput(&buf), WithClock(clock))
	if got := wrapped(41); got != 42 {
		t.Errorf("wrapped(41) = %d, want 42", got)
	}

	want := "\n" +
		"***********************************************\n" +
		"* Starting addOne on Mon Jun 29 2020 18:22:48 *\n" +
		"***********************************************\n" +
		"\n" +
		"*********************************************\n" +
		"* Ending addOne on Mon Jun 29 2020 18:22:50 *\n" +
		"* Elapsed time: 0:00:02.001842              *\n" +
		"*********************************************\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWrap_InvocationShapesAgree(t *testing.T) {
	newOpts := func(buf *bytes.Buffer) []Option {
		return []Option{WithOutput(buf), WithClock(newStepClock(time.Second)), WithName("double")}
	}
	double := func(n int) int { return n * 2 }

	var combined, deferred bytes.Buffer
	if got := Wrap(double, newOpts(&combined)...)(3); got != 6 {
		t.Errorf("combined form returned %d, want 6", got)
	}
	if got := With[func(int) int](newOpts(&deferred)...)(double)(3); got != 6 {
		t.Errorf("configurator form returned %d, want 6", got)
	}

	if combined.String() != deferred.String() {
		t.Errorf("invocation shapes differ:\n%s\n---\n%s", combined.String(), deferred.String())
	}
	if !strings.Contains(combined.String(), "Starting double on") {
		t.Errorf("expected start box for double, got:\n%s", combined.String())
	}
}

func TestWrap_PreservesType(t *testing.T) {
	wrapped := Wrap(addOne)
	if wrapped == nil {
		t.Fatal("Wrap returned nil")
	}
	if reflect.TypeOf(wrapped) != reflect.TypeOf(addOne) {
		t.Errorf("Wrap changed the function type to %T", wrapped)
	}
}

func TestWrap_StaticallyDisabled(t *testing.T) {
	var buf bytes.Buffer
	wrapped := Wrap(addOne, WithOutput(&buf), WithEnabled(false))

	if reflect.ValueOf(wrapped).Pointer() != reflect.ValueOf(addOne).Pointer() {
		t.Error("expected the original function back when disabled")
	}
	if got := wrapped(1); got != 2 {
		t.Errorf("wrapped(1) = %d, want 2", got)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got:\n%s", buf.String())
	}
}

func TestWrap_DynamicEnable(t *testing.T) {
	var buf bytes.Buffer
	on := true
	calls := 0
	wrapped := Wrap(addOne, WithOutput(&buf), WithEnabledFunc(func() bool {
		calls++
		return on
	}))

	if got := wrapped(1); got != 2 {
		t.Errorf("first call = %d, want 2", got)
	}
	first := buf.String()
	if !strings.Contains(first, "Starting addOne") || !strings.Contains(first, "Ending addOne") {
		t.Errorf("expected both boxes on the first call, got:\n%s", first)
	}

	buf.Reset()
	on = false
	if got := wrapped(2); got != 3 {
		t.Errorf("second call = %d, want 3", got)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no boxes on the second call, got:\n%s", buf.String())
	}
	if calls != 2 {
		t.Errorf("predicate evaluated %d times, want 2", calls)
	}
}

var errBoom = errors.New("boom")

func TestWrap_ErrorSkipsEndBox(t *testing.T) {
	var buf bytes.Buffer
	fail := func(s string) (int, error) { return len(s), errBoom }
	wrapped := Wrap(fail, WithOutput(&buf), WithName("fail"))

	n, err := wrapped("abc")
	if !errors.Is(err, errBoom) || err != errBoom {
		t.Errorf("expected errBoom unmodified, got %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	out := buf.String()
	if !strings.Contains(out, "Starting fail on") {
		t.Errorf("expected start box, got:\n%s", out)
	}
	if strings.Contains(out, "Ending") {
		t.Errorf("expected no end box after an error, got:\n%s", out)
	}
}

func TestWrap_NilErrorPrintsEndBox(t *testing.T) {
	var buf bytes.Buffer
	ok := func() error { return nil }
	if err := Wrap(ok, WithOutput(&buf))(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Ending") {
		t.Errorf("expected end box, got:\n%s", buf.String())
	}
}

func TestWrap_PanicPropagates(t *testing.T) {
	var buf bytes.Buffer
	wrapped := Wrap(func() { panic("kaboom") }, WithOutput(&buf), WithName("explode"))

	defer func() {
		r := recover()
		if r != "kaboom" {
			t.Errorf("recovered %v, want kaboom", r)
		}
		if !strings.Contains(buf.String(), "Starting explode") {
			t.Errorf("expected start box, got:\n%s", buf.String())
		}
		if strings.Contains(buf.String(), "Ending") {
			t.Errorf("expected no end box after a panic, got:\n%s", buf.String())
		}
	}()
	wrapped()
	t.Fatal("expected panic")
}

func TestWrap_Variadic(t *testing.T) {
	var buf bytes.Buffer
	join := func(sep string, parts ...string) string { return strings.Join(parts, sep) }
	wrapped := Wrap(join, WithOutput(&buf))

	if got := wrapped("-", "a", "b", "c"); got != "a-b-c" {
		t.Errorf("got %q, want a-b-c", got)
	}
	if got := wrapped(","); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestWrap_NilFunction(t *testing.T) {
	var fn func()
	if Wrap(fn) != nil {
		t.Error("expected nil function back")
	}
}

func TestWrap_NonFunctionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a non-function")
		}
	}()
	Wrap(42)
}

func TestWrap_ElapsedTime(t *testing.T) {
	var buf bytes.Buffer
	var rec Record
	nap := Wrap(func() { time.Sleep(20 * time.Millisecond) },
		WithOutput(&buf), WithOnComplete(func(r Record) { rec = r }))
	nap()

	if rec.Elapsed() < 20*time.Millisecond {
		t.Errorf("elapsed %v, want at least 20ms", rec.Elapsed())
	}
	if !rec.End.After(rec.Start) {
		t.Errorf("end %v is not after start %v", rec.End, rec.Start)
	}
	want := "Elapsed time: " + FormatElapsed(rec.Elapsed())
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected %q in output, got:\n%s", want, buf.String())
	}
}

func TestWrap_DateTimeFormat(t *testing.T) {
	var buf bytes.Buffer
	wrapped := Wrap(addOne, WithOutput(&buf), WithClock(newStepClock(0)),
		WithDateTimeFormat("01/02/06 15:04:05"))
	wrapped(0)

	if !strings.Contains(buf.String(), "* Starting addOne on 06/29/20 18:22:48 *") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "* Elapsed time: 0:00:00"+strings.Repeat(" ", 14)+"*") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestWrap_EmptyEnd(t *testing.T) {
	var buf bytes.Buffer
	wrapped := Wrap(addOne, WithOutput(&buf), WithClock(newStepClock(0)), WithEnd(""))
	wrapped(0)

	want := "\n" +
		"***********************************************" +
		"* Starting addOne on Mon Jun 29 2020 18:22:48 *" +
		"***********************************************" +
		"\n" +
		"*********************************************" +
		"* Ending addOne on Mon Jun 29 2020 18:22:48 *" +
		"* Elapsed time: 0:00:00                     *" +
		"*********************************************"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWrap_OnCompleteRecord(t *testing.T) {
	var got []Record
	wrapped := Wrap(addOne, WithOutput(&bytes.Buffer{}), WithClock(newStepClock(time.Minute)),
		WithOnComplete(func(r Record) { got = append(got, r) }))
	wrapped(1)
	wrapped(2)

	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	for i, r := range got {
		if r.Name != "addOne" {
			t.Errorf("record %d name = %q, want addOne", i, r.Name)
		}
		if r.Elapsed() != time.Minute {
			t.Errorf("record %d elapsed = %v, want 1m", i, r.Elapsed())
		}
	}
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	err := Run("task", func() error { return nil }, WithOutput(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Starting task") || !strings.Contains(buf.String(), "Ending task") {
		t.Errorf("expected both boxes, got:\n%s", buf.String())
	}

	buf.Reset()
	err = Run("task", func() error { return errBoom }, WithOutput(&buf))
	if err != errBoom {
		t.Errorf("expected errBoom, got %v", err)
	}
	if strings.Contains(buf.String(), "Ending") {
		t.Errorf("expected no end box, got:\n%s", buf.String())
	}

	buf.Reset()
	if err := Run("task", func() error { return nil }, WithOutput(&buf), WithEnabled(false)); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got:\n%s", buf.String())
	}
}

type store struct{}

func (*store) Save() {}

func TestFuncName(t *testing.T) {
	s := &store{}
	tests := []struct {
		fn   any
		want string
	}{
		{addOne, "addOne"},
		{s.Save, "(*store).Save"},
		{fmt.Sprintf, "Sprintf"},
		{strings.ToUpper, "ToUpper"},
		{yaml.Unmarshal, "Unmarshal"},
		{(*yaml.Decoder).Decode, "(*Decoder).Decode"},
		{42, ""},
	}
	for _, tt := range tests {
		if got := FuncName(tt.fn); got != tt.want {
			t.Errorf("FuncName(%T) = %q, want %q", tt.fn, got, tt.want)
		}
	}
}

func TestTrimVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"v3.Unmarshal", "Unmarshal", true},
		{"v10.(*Decoder).Decode", "(*Decoder).Decode", true},
		{"v2", "v2", false},
		{"vx.Run", "vx.Run", false},
		{"Unmarshal", "Unmarshal", false},
	}
	for _, tt := range tests {
		got, ok := trimVersion(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("trimVersion(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
