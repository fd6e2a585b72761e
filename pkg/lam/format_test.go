package lam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

func (FormatSuite) TestCanonicalLayout(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "binding spacing",
			input:    `x=λa.a+1`,
			expected: "x = λa. a + 1\n",
		},
		{
			name:     "backslash lambda becomes λ",
			input:    `id = \a. a`,
			expected: "id = λa. a\n",
		},
		{
			name:     "callee is always parenthesized",
			input:    `print 5`,
			expected: "(print) 5\n",
		},
		{
			name:     "grouping kept where precedence needs it",
			input:    `(1+2)*3`,
			expected: "(1 + 2) * 3\n",
		},
		{
			name:     "redundant grouping dropped",
			input:    `(1*2)+3`,
			expected: "1 * 2 + 3\n",
		},
		{
			name:     "right-nested subtraction keeps its parens",
			input:    `1-(2-3)`,
			expected: "1 - (2 - 3)\n",
		},
		{
			name:     "left-nested subtraction loses them",
			input:    `(1-2)-3`,
			expected: "1 - 2 - 3\n",
		},
		{
			name:     "abstraction as an operand",
			input:    `(λx.x)+1`,
			expected: "(λx. x) + 1\n",
		},
		{
			name:     "application as an operand",
			input:    `((f) 1) + 2`,
			expected: "((f) 1) + 2\n",
		},
		{
			name:     "recursion",
			input:    `(λn.𝑓(n-1)) 3`,
			expected: "(λn. 𝑓(n - 1)) 3\n",
		},
		{
			name:     "statements sharing a line are split",
			input:    `(λascii. ascii) 72 (λascii. ascii) 10`,
			expected: "(λascii. ascii) 72\n(λascii. ascii) 10\n",
		},
		{
			name: "multi-line statement is joined",
			input: `(λprint.
  print) 5`,
			expected: "(λprint. print) 5\n",
		},
		{
			name:     "empty program",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := FormatFile("test.lam", []byte(tt.input), DefaultFormatOptions)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestComments(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "standalone and trailing",
			input:    "// top\nx = 1 // one\ny = 2\n",
			expected: "// top\nx = 1 // one\ny = 2\n",
		},
		{
			name:     "runs of blank lines collapse to one",
			input:    "x = 1\n\n\n\ny = 2\n",
			expected: "x = 1\n\ny = 2\n",
		},
		{
			name:     "comment at the end of the file",
			input:    "x = 1\n\n// done\n",
			expected: "x = 1\n\n// done\n",
		},
		{
			name:     "comment inside a statement moves above it",
			input:    "(λprint.\n  // forwarded\n  print) 5\n",
			expected: "// forwarded\n(λprint. print) 5\n",
		},
		{
			name:     "trailing comment stays with the last statement on its line",
			input:    "(λascii. ascii) 72 (λascii. ascii) 10 // H and a newline\n",
			expected: "(λascii. ascii) 72\n(λascii. ascii) 10 // H and a newline\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := FormatFile("test.lam", []byte(tt.input), DefaultFormatOptions)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestLambdaOption(ctx context.Context, t *testctx.T) {
	result, err := FormatFile("test.lam", []byte("k = λa. λb. a"), FormatOptions{Lambda: `\`})
	require.NoError(t, err)
	require.Equal(t, "k = \\a. \\b. a\n", result)
}

func (FormatSuite) TestIdempotent(ctx context.Context, t *testctx.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.lam"))
	require.NoError(t, err)

	for _, file := range files {
		t.Run(filepath.Base(file), func(ctx context.Context, t *testctx.T) {
			source, err := os.ReadFile(file)
			require.NoError(t, err)

			once, err := FormatFile(file, source, DefaultFormatOptions)
			require.NoError(t, err)
			twice, err := FormatFile(file, []byte(once), DefaultFormatOptions)
			require.NoError(t, err)
			require.Equal(t, once, twice)
		})
	}
}

func (FormatSuite) TestPreservesMeaning(ctx context.Context, t *testctx.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.lam"))
	require.NoError(t, err)

	for _, file := range files {
		t.Run(filepath.Base(file), func(ctx context.Context, t *testctx.T) {
			source, err := os.ReadFile(file)
			require.NoError(t, err)

			formatted, err := FormatFile(file, source, DefaultFormatOptions)
			require.NoError(t, err)

			before, err := run(ctx, string(source), "")
			require.NoError(t, err)
			after, err := run(ctx, formatted, "")
			require.NoError(t, err)
			require.Equal(t, before, after)
		})
	}
}
