package lam

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/pkg/errors"

	"github.com/vito/lam/pkg/ioctx"
)

// Builtin identifies one of the five reserved, effectful abstractions.
type Builtin int

const (
	BuiltinAscii Builtin = iota
	BuiltinPrint
	BuiltinInput
	BuiltinTime
	BuiltinSleep
)

var builtinNames = [...]string{
	BuiltinAscii: "ascii",
	BuiltinPrint: "print",
	BuiltinInput: "input",
	BuiltinTime:  "time",
	BuiltinSleep: "sleep",
}

var builtinsByName = map[string]Builtin{}

func init() {
	for b, name := range builtinNames {
		builtinsByName[name] = Builtin(b)
	}
}

// ReservedNames lists the builtin names in a stable order.
func ReservedNames() []string {
	return slices.Clone(builtinNames[:])
}

func (b Builtin) String() string {
	if int(b) < len(builtinNames) {
		return builtinNames[b]
	}
	return "builtin(" + strconv.Itoa(int(b)) + ")"
}

func (b Builtin) invoke(ctx context.Context, arg Value) (Value, error) {
	n, ok := arg.(NumValue)
	if !ok {
		return nil, newError(BuiltinError, nil, "%s takes a number, got %s", b, arg)
	}

	slog.Debug("calling builtin", "builtin", b.String(), "arg", n.Val)

	switch b {
	case BuiltinAscii:
		return builtinAscii(ctx, n)
	case BuiltinPrint:
		return builtinPrint(ctx, n)
	case BuiltinInput:
		return builtinInput(ctx, n)
	case BuiltinTime:
		return builtinTime(ctx)
	case BuiltinSleep:
		return builtinSleep(ctx, n)
	}
	return nil, newError(BuiltinError, nil, "unknown builtin %s", b)
}

func builtinAscii(ctx context.Context, n NumValue) (Value, error) {
	if n.Val < 0 || n.Val > 255 {
		return nil, newError(BuiltinError, nil,
			"ascii takes a character code from 0 to 255, got %d", n.Val)
	}
	if err := write(ctx, []byte{byte(n.Val)}); err != nil {
		return nil, err
	}
	return n, nil
}

func builtinPrint(ctx context.Context, n NumValue) (Value, error) {
	if err := write(ctx, []byte(n.String())); err != nil {
		return nil, err
	}
	return n, nil
}

func builtinInput(ctx context.Context, n NumValue) (Value, error) {
	switch n.Val {
	case 0:
		return readChar(ctx)
	case 1:
		return readNumber(ctx)
	default:
		return nil, newError(BuiltinError, nil,
			"input takes 0 (character) or 1 (number), got %d", n.Val)
	}
}

func builtinTime(ctx context.Context) (Value, error) {
	now := runtimeFrom(ctx).now()
	if runtimeFrom(ctx).Config.TimeUnit == TimeUnitSeconds {
		return Num(now.Unix()), nil
	}
	return Num(now.UnixMilli()), nil
}

func builtinSleep(ctx context.Context, n NumValue) (Value, error) {
	if n.Val < 0 {
		return nil, newError(BuiltinError, nil,
			"sleep takes a non-negative number of milliseconds, got %d", n.Val)
	}
	timer := time.NewTimer(time.Duration(n.Val) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func write(ctx context.Context, p []byte) error {
	if _, err := ioctx.StdoutFromContext(ctx).Write(p); err != nil {
		return wrapError(BuiltinError, nil, errors.Wrap(err, "writing to stdout"))
	}
	return nil
}

// readChar reads one byte. On an interactive terminal it reads a single
// keypress without waiting for Enter.
func readChar(ctx context.Context) (Value, error) {
	rt := runtimeFrom(ctx)
	in := rt.stdin(ctx)

	if fd, ok := rt.rawTerminal(ctx); ok {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, wrapError(InputError, nil, errors.Wrap(err, "entering raw mode"))
		}
		defer term.Restore(fd, state) //nolint:errcheck

		c, err := in.ReadByte()
		if err != nil {
			return nil, inputError(err)
		}
		switch c {
		case '\r':
			c = '\n'
		case 3: // Ctrl-C
			return nil, newError(InputError, nil, "interrupted")
		}
		return Num(int64(c)), nil
	}

	c, err := in.ReadByte()
	if err != nil {
		return nil, inputError(err)
	}
	return Num(int64(c)), nil
}

// readNumber reads one whitespace-delimited token and parses it as an
// integer.
func readNumber(ctx context.Context) (Value, error) {
	in := runtimeFrom(ctx).stdin(ctx)

	var token strings.Builder
	for {
		c, err := in.ReadByte()
		if err == io.EOF && token.Len() > 0 {
			break
		}
		if err != nil {
			return nil, inputError(err)
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if token.Len() == 0 {
				continue
			}
			break
		}
		token.WriteByte(c)
	}

	n, err := strconv.ParseInt(token.String(), 10, 64)
	if err != nil {
		return nil, newError(InputError, nil, "expected a number, got %q", token.String())
	}
	return Num(n), nil
}

func inputError(err error) error {
	if err == io.EOF {
		return newError(InputError, nil, "end of input")
	}
	return wrapError(InputError, nil, errors.Wrap(err, "reading stdin"))
}

// Runtime is the per-interpreter state the builtins need: where input comes
// from, how time is read and reported, and whether the terminal may be put
// in raw mode.
type Runtime struct {
	Config RuntimeConfig

	// Now reads the clock; nil means time.Now.
	Now func() time.Time

	source io.Reader
	reader *bufio.Reader
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}

// stdin returns a buffered reader over the context's stdin, reused across
// calls so no buffered input is lost between them.
func (rt *Runtime) stdin(ctx context.Context) *bufio.Reader {
	src := ioctx.StdinFromContext(ctx)
	if rt.reader == nil || rt.source != src {
		rt.source = src
		rt.reader = bufio.NewReader(src)
	}
	return rt.reader
}

// rawTerminal reports whether single keypresses can be read from stdin.
func (rt *Runtime) rawTerminal(ctx context.Context) (uintptr, bool) {
	if !rt.Config.RawInput || rt.reader.Buffered() > 0 {
		return 0, false
	}
	f, ok := ioctx.StdinFromContext(ctx).(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return 0, false
	}
	return f.Fd(), true
}

type runtimeKey struct{}

// WithRuntime makes rt available to the builtins.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func runtimeFrom(ctx context.Context) *Runtime {
	if rt, ok := ctx.Value(runtimeKey{}).(*Runtime); ok {
		return rt
	}
	return &Runtime{Config: DefaultRuntimeConfig()}
}
