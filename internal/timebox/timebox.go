// Package timebox wraps functions so that every call is announced with
// a start box and an end box carrying the elapsed wall clock time.
//
// A function can be wrapped directly,
//
//	work = timebox.Wrap(work)
//
// with options,
//
//	work = timebox.Wrap(work, timebox.WithOutput(os.Stderr))
//
// or through a configurator that is applied later:
//
//	deco := timebox.With[func(int) int](timebox.WithDateTimeFormat("15:04:05"))
//	double = deco(double)
package timebox

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap returns a function of the same type as fn that prints a start
// box, calls fn with the caller's arguments, prints an end box and
// returns fn's results unchanged.
//
// If fn panics, or its last result is a non-nil error, the end box is
// not printed and the failure reaches the caller untouched.
//
// Wrap returns fn itself when announcements are disabled with
// WithEnabled(false) or fn is nil. It panics if fn is not a function.
func Wrap[F any](fn F, opts ...Option) F {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("timebox: Wrap of non-function %T", fn))
	}
	if v.IsNil() {
		return fn
	}

	cfg := newConfig(opts)
	if cfg.enabled.staticallyOff() {
		return fn
	}
	name := cfg.name
	if name == "" {
		name = FuncName(fn)
	}

	typ := v.Type()
	call := v.Call
	if typ.IsVariadic() {
		call = v.CallSlice
	}

	wrapper := reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
		if !cfg.enabled.resolve() {
			return call(args)
		}
		return invoke(cfg, name, func() ([]reflect.Value, bool) {
			out := call(args)
			return out, failed(typ, out)
		})
	})
	return wrapper.Interface().(F)
}

// With returns a configurator that wraps functions of type F with
// opts: With[F](opts...)(fn) behaves exactly like Wrap(fn, opts...).
func With[F any](opts ...Option) func(F) F {
	return func(fn F) F {
		return Wrap(fn, opts...)
	}
}

// Run calls fn between a start box and an end box announcing name.
// An error from fn is returned as is and suppresses the end box.
func Run(name string, fn func() error, opts ...Option) error {
	cfg := newConfig(opts)
	if !cfg.enabled.resolve() {
		return fn()
	}
	if cfg.name != "" {
		name = cfg.name
	}

	var err error
	invoke(cfg, name, func() ([]reflect.Value, bool) {
		err = fn()
		return nil, err != nil
	})
	return err
}

// invoke runs fn between the two announcements. Announcement write
// errors are dropped: the wrapped signature has no room for them.
func invoke(cfg *config, name string, fn func() ([]reflect.Value, bool)) []reflect.Value {
	h := newHeader(name, cfg)
	_ = h.PrintStart()

	out, bad := fn()
	if bad {
		return out
	}

	_ = h.PrintEnd()
	if cfg.onComplete != nil {
		cfg.onComplete(h.Record())
	}
	return out
}

// failed reports whether the last result is a non-nil error.
func failed(typ reflect.Type, out []reflect.Value) bool {
	n := typ.NumOut()
	if n == 0 || typ.Out(n-1) != errorType {
		return false
	}
	return !out[n-1].IsNil()
}

// FuncName returns the short name of the function fn, without its
// package path: "main.work" becomes "work" and the method value
// "pkg.(*Store).Save-fm" becomes "(*Store).Save". Anonymous functions
// keep their compiler-generated suffix, e.g. "main.func1".
//
// Dots inside the last path element are escaped in symbol names
// ("gopkg.in/yaml%2ev3.Unmarshal"). Unescaped names are also accepted
// as long as the dotted suffix is a major version, as in gopkg.in paths.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "%2e"); i >= 0 {
		name = name[i+len("%2e"):]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if rest, ok := trimVersion(name); ok {
		name = rest
	}
	return strings.TrimSuffix(name, "-fm")
}

// trimVersion removes a leading "vN." package suffix from name.
func trimVersion(name string) (string, bool) {
	if len(name) < 3 || name[0] != 'v' {
		return name, false
	}
	i := 1
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 1 || i == len(name) || name[i] != '.' {
		return name, false
	}
	return name[i+1:], true
}
