package lam

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/lam/pkg/ioctx"
)

// runWith evaluates src in interp with the given stdin and returns stdout.
func runWith(t *testing.T, interp *Interpreter, src, stdin string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	ctx := ioctx.StdoutToContext(context.Background(), &stdout)
	ctx = ioctx.StdinToContext(ctx, strings.NewReader(stdin))

	prog, err := Parse("test.lam", src)
	require.NoError(t, err)
	err = interp.Run(ctx, prog)
	return stdout.String(), err
}

func TestInput(t *testing.T) {
	t.Run("characters", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		out, err := runWith(t, interp, "(λprint. print) input 0\n(λprint. print) input 0", "Hi")
		require.NoError(t, err)
		assert.Equal(t, "72105", out)
	})

	t.Run("echo a character", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		out, err := runWith(t, interp, "(λascii. ascii) input 0", "z")
		require.NoError(t, err)
		assert.Equal(t, "z", out)
	})

	t.Run("numbers", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		out, err := runWith(t, interp, "a = input 1\nb = input 1\n(λprint. print) a + b", "  40\n\t-2\n")
		require.NoError(t, err)
		assert.Equal(t, "38", out)
	})

	t.Run("number at end of input", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		out, err := runWith(t, interp, "(λprint. print) input 1", "7")
		require.NoError(t, err)
		assert.Equal(t, "7", out)
	})

	t.Run("reads continue where the last one stopped", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		out, err := runWith(t, interp, "n = input 1\n(λprint. print) input 0\n(λprint. print) n", "5 X")
		require.NoError(t, err)
		assert.Equal(t, "885", out)
	})

	t.Run("digits glued to letters are not a number", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		out, err := runWith(t, interp, "(λprint. print) input 1", "5X")
		require.Error(t, err)
		assert.Empty(t, out)
	})

	for _, tt := range []struct {
		name    string
		src     string
		stdin   string
		message string
	}{
		{"no character", "input 0", "", "end of input"},
		{"no number", "input 1", "   \n", "end of input"},
		{"not a number", "input 1", "abc", `expected a number, got "abc"`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runWith(t, NewInterpreter(DefaultRuntimeConfig()), tt.src, tt.stdin)
			require.Error(t, err)
			kind, _ := KindOf(err)
			assert.Equal(t, InputError, kind)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestTime(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

	t.Run("milliseconds by default", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		interp.Runtime.Now = func() time.Time { return now }
		out, err := runWith(t, interp, "(λprint. print) time 0", "")
		require.NoError(t, err)
		assert.Equal(t, "1704164645678", out)
	})

	t.Run("seconds when configured", func(t *testing.T) {
		interp := NewInterpreter(RuntimeConfig{TimeUnit: TimeUnitSeconds})
		interp.Runtime.Now = func() time.Time { return now }
		out, err := runWith(t, interp, "(λprint. print) time 0", "")
		require.NoError(t, err)
		assert.Equal(t, "1704164645", out)
	})

	t.Run("forwarding to time ignores the value", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		interp.Runtime.Now = func() time.Time { return now }
		require.NoError(t, interp.Run(context.Background(), mustParse(t, "t = (λtime. 123) 0")))
		val, _ := interp.Global.Get("t")
		assert.Equal(t, Num(1704164645678), val)
	})
}

func TestSleep(t *testing.T) {
	t.Run("returns its argument", func(t *testing.T) {
		interp := NewInterpreter(DefaultRuntimeConfig())
		require.NoError(t, interp.Run(context.Background(), mustParse(t, "s = sleep 1")))
		val, _ := interp.Global.Get("s")
		assert.Equal(t, Num(1), val)
	})

	t.Run("is interrupted by cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := NewInterpreter(DefaultRuntimeConfig()).Run(ctx, mustParse(t, "sleep 60_000"))
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 10*time.Second)
	})
}

func TestReservedNames(t *testing.T) {
	assert.Equal(t, []string{"ascii", "print", "input", "time", "sleep"}, ReservedNames())
	for _, name := range ReservedNames() {
		b, ok := LookupBuiltin(name)
		require.True(t, ok)
		assert.Equal(t, name, b.Builtin.String())
	}
	_, ok := LookupBuiltin("printf")
	assert.False(t, ok)
}

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse("test.lam", src)
	require.NoError(t, err)
	return prog
}
