package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// errInterrupted is returned when the line was abandoned with Ctrl+C.
var errInterrupted = errors.New("interrupted")

// Control keys of the raw mode line editor.
const (
	keyCtrlA     = 0x01
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyCtrlE     = 0x05
	keyBackspace = 0x08
	keyCtrlK     = 0x0b
	keyLineFeed  = 0x0a
	keyEnter     = 0x0d
	keyCtrlU     = 0x15
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

// lineEditor reads lines from a terminal in raw mode and echoes the edits.
type lineEditor struct {
	in  *bufio.Reader
	out io.Writer

	history      []string
	historyIndex int // index into history while navigating, len(history) for the new line

	line   []rune
	cursor int
}

func newLineEditor(in *bufio.Reader, out io.Writer, history []string) *lineEditor {
	return &lineEditor{
		in:      in,
		out:     out,
		history: history,
	}
}

// addHistory appends a line to the navigable history.
func (e *lineEditor) addHistory(line string) {
	if n := len(e.history); n > 0 && e.history[n-1] == line {
		return
	}
	e.history = append(e.history, line)
}

// readLine prints the prompt and returns the edited line once Enter is pressed.
// Ctrl+D on an empty line returns io.EOF, Ctrl+C returns errInterrupted.
func (e *lineEditor) readLine(prompt string) (string, error) {
	e.line = e.line[:0]
	e.cursor = 0
	e.historyIndex = len(e.history)
	e.print(prompt)

	for {
		b, err := e.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(e.line) > 0 {
				return string(e.line), nil
			}
			return "", err
		}

		switch b {
		case keyCtrlD:
			if len(e.line) == 0 {
				return "", io.EOF
			}
			e.deleteAtCursor()

		case keyCtrlC:
			e.print("^C\r\n")
			return "", errInterrupted

		case keyEnter, keyLineFeed:
			e.print("\r\n")
			return string(e.line), nil

		case keyDelete, keyBackspace:
			if e.cursor > 0 {
				e.cursor--
				e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
				e.print("\b")
				e.redrawFromCursor()
			}

		case keyCtrlA:
			if e.cursor > 0 {
				e.print(fmt.Sprintf("\x1b[%dD", e.cursor))
				e.cursor = 0
			}

		case keyCtrlE:
			if e.cursor < len(e.line) {
				e.print(fmt.Sprintf("\x1b[%dC", len(e.line)-e.cursor))
				e.cursor = len(e.line)
			}

		case keyCtrlK:
			e.line = e.line[:e.cursor]
			e.print("\x1b[K")

		case keyCtrlU:
			e.replaceLine(nil)

		case keyEscape:
			e.handleEscape()

		default:
			if err := e.insert(b); err != nil {
				return "", err
			}
		}
	}
}

// handleEscape processes the escape sequences of the arrow and delete keys.
func (e *lineEditor) handleEscape() {
	next, err := e.in.ReadByte()
	if err != nil || next != '[' {
		return
	}
	key, err := e.in.ReadByte()
	if err != nil {
		return
	}

	switch key {
	case 'A': // up
		if e.historyIndex > 0 {
			e.historyIndex--
			e.replaceLine([]rune(e.history[e.historyIndex]))
		}
	case 'B': // down
		if e.historyIndex < len(e.history) {
			e.historyIndex++
			if e.historyIndex == len(e.history) {
				e.replaceLine(nil)
			} else {
				e.replaceLine([]rune(e.history[e.historyIndex]))
			}
		}
	case 'C': // right
		if e.cursor < len(e.line) {
			e.cursor++
			e.print("\x1b[C")
		}
	case 'D': // left
		if e.cursor > 0 {
			e.cursor--
			e.print("\x1b[D")
		}
	case '3': // delete: ESC [ 3 ~
		if tilde, err := e.in.ReadByte(); err == nil && tilde == '~' {
			e.deleteAtCursor()
		}
	default:
	}
}

// insert adds the character starting with the given byte at the cursor.
// Control characters are ignored.
func (e *lineEditor) insert(b byte) error {
	if b < 0x20 {
		return nil
	}

	r := rune(b)
	if b >= utf8.RuneSelf {
		buf := []byte{b}
		for !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
			next, err := e.in.ReadByte()
			if err != nil {
				return fmt.Errorf("reading character: %w", err)
			}
			buf = append(buf, next)
		}
		r, _ = utf8.DecodeRune(buf)
	}

	e.line = append(e.line, 0)
	copy(e.line[e.cursor+1:], e.line[e.cursor:])
	e.line[e.cursor] = r
	e.cursor++

	e.print(string(r))
	if e.cursor < len(e.line) {
		e.redrawFromCursor()
	}
	return nil
}

func (e *lineEditor) deleteAtCursor() {
	if e.cursor < len(e.line) {
		e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
		e.redrawFromCursor()
	}
}

// replaceLine replaces the whole line and moves the cursor to its end.
func (e *lineEditor) replaceLine(line []rune) {
	if e.cursor > 0 {
		e.print(fmt.Sprintf("\x1b[%dD", e.cursor))
	}
	e.line = append(e.line[:0], line...)
	e.cursor = len(e.line)
	e.print("\x1b[K" + string(e.line))
}

// redrawFromCursor prints the line from the cursor to its end and moves the
// terminal cursor back to the cursor position.
func (e *lineEditor) redrawFromCursor() {
	e.print("\x1b[K" + string(e.line[e.cursor:]))
	if e.cursor < len(e.line) {
		e.print(fmt.Sprintf("\x1b[%dD", len(e.line)-e.cursor))
	}
}

func (e *lineEditor) print(s string) {
	_, _ = io.WriteString(e.out, s)
}
