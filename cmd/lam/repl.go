package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/kr/pretty"
	"github.com/peterh/liner"

	"github.com/vito/lam/pkg/ioctx"
	"github.com/vito/lam/pkg/lam"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	welcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	replFilename = "<repl>"
	promptMain   = "lam> "
	promptCont   = "...  "
)

type replCommand struct {
	name string
	desc string
}

var replCommandDefs = []replCommand{
	{"help", "Show this help"},
	{"env", "List global bindings"},
	{"reset", "Forget every global binding"},
	{"debug", "Toggle debug logging and AST dumps"},
	{"quit", "Exit the REPL"},
	{"exit", "Exit the REPL"},
}

type repl struct {
	interp *lam.Interpreter
	line   *liner.State
	out    *trackingWriter
	debug  bool
}

func runREPL(ctx context.Context, cfg Config) error {
	config := lam.DefaultProjectConfig()
	if cwd, err := os.Getwd(); err == nil {
		path, found, err := lam.FindProjectConfig(cwd)
		if err != nil {
			fmt.Fprintf(ioctx.StderrFromContext(ctx), "warning: failed to load %s: %v\n", lam.ProjectConfigFile, err)
		} else if found != nil {
			slog.Debug("loaded project config", "path", path)
			config = found
		}
	}

	r := &repl{
		interp: lam.NewInterpreter(config.Runtime),
		line:   liner.NewLiner(),
		out:    &trackingWriter{w: ioctx.StdoutFromContext(ctx), last: '\n'},
		debug:  cfg.Debug,
	}
	defer r.line.Close()

	r.line.SetCtrlCAborts(true)
	r.line.SetMultiLineMode(true)
	r.line.SetCompleter(r.complete)

	histPath := historyFilePath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = r.line.ReadHistory(f)
		_ = f.Close()
	}
	defer r.saveHistory(histPath)

	ctx = ioctx.StdoutToContext(ctx, r.out)

	fmt.Println(welcomeStyle.Render("lam REPL v0.1.0"))
	fmt.Println(dimStyle.Render("Type :help for commands, Ctrl+D to exit."))

	for {
		src, ok := r.read()
		if !ok {
			fmt.Println()
			return nil
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		r.line.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(strings.TrimPrefix(trimmed, ":")); quit {
				return nil
			}
			continue
		}

		r.eval(ctx, src)
	}
}

// read prompts until the input parses or fails for a reason other than
// running out of input.
func (r *repl) read() (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := r.line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := lam.Parse(replFilename, src); err != nil && lam.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

func (r *repl) eval(ctx context.Context, src string) {
	prog, err := lam.Parse(replFilename, src)
	if err != nil {
		r.showError(ctx, src, err)
		return
	}

	if r.debug {
		_, _ = pretty.Fprintf(ioctx.StderrFromContext(ctx), "%# v\n", prog)
	}

	// Ctrl+C interrupts the running program rather than the REPL.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	for _, stmt := range prog.Statements {
		val, err := r.interp.Exec(ctx, stmt)
		r.out.finishLine()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println(errorStyle.Render("interrupted"))
				return
			}
			r.showError(ctx, src, err)
			return
		}

		switch s := stmt.(type) {
		case *lam.Binding:
			fmt.Println(dimStyle.Render(s.Name + " = " + val.String()))
		case *lam.ExprStatement:
			if lam.IsHalt(val) {
				fmt.Println(dimStyle.Render("=> " + val.String()))
			} else {
				fmt.Println(resultStyle.Render("=> " + val.String()))
			}
		}
	}
}

func (r *repl) showError(ctx context.Context, src string, err error) {
	stderr := ioctx.StderrFromContext(ctx)
	err = lam.NewEvalContext(replFilename, src).CreateSourceError(err)
	var sourceErr *lam.SourceError
	if errors.As(err, &sourceErr) {
		fmt.Fprint(stderr, renderError(stderr, sourceErr))
		return
	}
	fmt.Fprintln(stderr, errorStyle.Render(err.Error()))
}

// command runs a ":" command and reports whether the REPL should exit.
func (r *repl) command(cmdLine string) bool {
	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		fmt.Println(errorStyle.Render("empty command"))
		return false
	}

	switch parts[0] {
	case "help":
		fmt.Println("Available commands:")
		for _, cmd := range replCommandDefs {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  :%-6s - %s", cmd.name, cmd.desc)))
		}
		fmt.Println()
		fmt.Println(dimStyle.Render("Bindings persist between entries. Unfinished input continues on the next line."))

	case "quit", "exit":
		return true

	case "reset":
		r.interp.Reset()
		fmt.Println(resultStyle.Render("Environment reset."))

	case "debug":
		r.debug = !r.debug
		status := "disabled"
		if r.debug {
			logLevel.Set(slog.LevelDebug)
			status = "enabled"
		} else {
			logLevel.Set(slog.LevelInfo)
		}
		fmt.Println(resultStyle.Render(fmt.Sprintf("Debug mode %s.", status)))

	case "env":
		names := r.interp.Global.Names()
		if len(names) == 0 {
			fmt.Println(dimStyle.Render("No bindings yet."))
			break
		}
		for _, name := range names {
			val, _ := r.interp.Global.Get(name)
			fmt.Println(dimStyle.Render(fmt.Sprintf("  %s = %s", name, val)))
		}

	default:
		fmt.Println(errorStyle.Render(fmt.Sprintf("unknown command: %s (type :help for available commands)", parts[0])))
	}
	return false
}

// complete offers commands, global bindings, and builtin names for the
// identifier under the cursor.
func (r *repl) complete(line string) []string {
	if strings.HasPrefix(line, ":") {
		var out []string
		for _, cmd := range replCommandDefs {
			if strings.HasPrefix(":"+cmd.name, line) {
				out = append(out, ":"+cmd.name)
			}
		}
		return out
	}

	partial := lastIdent(line)
	head := line[:len(line)-len(partial)]

	seen := map[string]bool{}
	var out []string
	for _, name := range append(r.interp.Global.Names(), lam.ReservedNames()...) {
		if !seen[name] && strings.HasPrefix(name, partial) {
			seen[name] = true
			out = append(out, head+name)
		}
	}
	sort.Strings(out)
	return out
}

func lastIdent(s string) string {
	i := len(s) - 1
	for i >= 0 && isIdentByte(s[i]) {
		i--
	}
	return s[i+1:]
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func (r *repl) saveHistory(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = r.line.WriteHistory(f)
		_ = f.Close()
	}
}

// historyFilePath returns the path to the history file, respecting
// XDG_DATA_HOME (default ~/.local/share/lam/history).
func historyFilePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "lam_history")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "lam", "history")
}

// trackingWriter remembers whether program output left the cursor
// mid-line, so results always start on a fresh one.
type trackingWriter struct {
	w    io.Writer
	last byte
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.last = p[n-1]
	}
	return n, err
}

func (t *trackingWriter) finishLine() {
	if t.last != '\n' {
		_, _ = t.Write([]byte("\n"))
	}
}
