package ioctx

import (
	"context"
	"io"
)

type stdoutKey struct{}
type stderrKey struct{}

func StderrFromContext(ctx context.Context) io.Writer {
	logger := ctx.Value(stderrKey{})
	if logger == nil {
		logger = io.Discard
	}

	return logger.(io.Writer)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

func StdoutFromContext(ctx context.Context) io.Writer {
	writer := ctx.Value(stdoutKey{})
	if writer == nil {
		writer = io.Discard
	}

	return writer.(io.Writer)
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

type stdinKey struct{}

// StdinFromContext returns the reader installed by StdinToContext, or an
// empty reader.
func StdinFromContext(ctx context.Context) io.Reader {
	reader := ctx.Value(stdinKey{})
	if reader == nil {
		reader = eofReader{}
	}

	return reader.(io.Reader)
}

func StdinToContext(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
