// Package repl implements the interactive read-eval-print loop that
// interprets every entered line as a separate program.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/retroenv/bfck/internal/config"
	"github.com/retroenv/bfck/internal/history"
	"github.com/retroenv/bfck/internal/pipeline"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const (
	prompt      = ">>> "
	clearScreen = "\x1b[2J\x1b[H"
)

// REPL reads programs line by line and interprets them. Input operations of
// the programs read from the same input as the lines.
type REPL struct {
	logger  *log.Logger
	pipe    *pipeline.Pipeline
	store   history.Store
	session string

	in  *bufio.Reader
	out io.Writer

	stdin *os.File // set if the input is a file that can be a terminal
}

// New returns a new REPL reading from in and writing to out.
func New(logger *log.Logger, cfg config.Config, store history.Store, in io.Reader, out io.Writer) *REPL {
	r := &REPL{
		logger:  logger,
		pipe:    pipeline.New(logger, cfg),
		store:   store,
		session: history.NewSession(),
		in:      bufio.NewReader(in),
		out:     out,
	}
	if f, ok := in.(*os.File); ok {
		r.stdin = f
	}
	return r
}

// Run starts the loop, using the line editor in raw mode if the input is a
// terminal. It returns when the input ends.
func (r *REPL) Run() error {
	if f, ok := r.out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		r.print(clearScreen)
	}
	r.print("bfck REPL (Ctrl+D to exit)\n\n")
	r.logger.Debug("Starting REPL", log.String("session", r.session))

	if r.stdin == nil || !term.IsTerminal(int(r.stdin.Fd())) {
		return r.RunBasic()
	}

	fd := int(r.stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		r.logger.Warn("Failed to set raw mode", log.Err(err))
		return r.RunBasic()
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	return r.runRaw()
}

// RunBasic reads plain lines without line editing, used for input that is
// not a terminal.
func (r *REPL) RunBasic() error {
	for {
		r.print(prompt)

		line, err := r.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			r.print("\n")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading line: %w", err)
		}

		r.eval(strings.TrimRight(line, "\r\n"), r.out)
	}
}

func (r *REPL) runRaw() error {
	lines, err := r.store.Lines(history.DefaultLimit)
	if err != nil {
		r.logger.Warn("Loading history failed", log.Err(err))
	}

	out := &crlfWriter{writer: r.out}
	editor := newLineEditor(r.in, r.out, lines)

	for {
		line, err := editor.readLine(prompt)
		switch {
		case errors.Is(err, errInterrupted):
			continue
		case errors.Is(err, io.EOF):
			r.print("\r\n")
			return nil
		case err != nil:
			return fmt.Errorf("reading line: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			editor.addHistory(line)
		}
		r.eval(line, out)
	}
}

// eval interprets the line with a fresh interpreter. Errors are printed and
// do not end the loop.
func (r *REPL) eval(line string, out io.Writer) {
	if strings.TrimSpace(line) == "" {
		return
	}

	if err := r.store.Append(r.session, line); err != nil {
		r.logger.Warn("Storing history failed", log.Err(err))
	}

	var result strings.Builder
	err := r.pipe.Interpret([]byte(line), r.in, &result)
	if result.Len() > 0 {
		_, _ = io.WriteString(out, result.String())
		if !strings.HasSuffix(result.String(), "\n") {
			_, _ = io.WriteString(out, "\n")
		}
	}
	if err != nil {
		_, _ = fmt.Fprintf(out, "Error: %v\n", err)
	}
}

func (r *REPL) print(s string) {
	_, _ = io.WriteString(r.out, s)
}

// crlfWriter translates line feeds to the carriage return and line feed
// pairs that a terminal in raw mode requires.
type crlfWriter struct {
	writer io.Writer
}

func (w *crlfWriter) Write(p []byte) (int, error) {
	translated := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := io.WriteString(w.writer, translated); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}
	return len(p), nil
}
