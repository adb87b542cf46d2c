// Package writer implements the line formatting of the generated assembly file.
package writer

import (
	"fmt"
	"io"
	"strings"
)

// commentColumn is the column that trailing instruction comments are aligned to.
const commentColumn = 32

const indent = "    "

// Writer formats labels, instructions and raw template blocks.
type Writer struct {
	writer io.Writer
}

// New creates a new writer.
func New(writer io.Writer) *Writer {
	return &Writer{
		writer: writer,
	}
}

// Code writes an indented instruction line.
func (w Writer) Code(code string) error {
	return w.CodeWithComment(code, "")
}

// CodeWithComment writes an indented instruction line with a trailing
// comment aligned to the comment column. An empty comment is omitted.
func (w Writer) CodeWithComment(code, comment string) error {
	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "%s%s\n", indent, code)
	} else {
		_, err = fmt.Fprintf(w.writer, "%s%-*s ; %s\n", indent, commentColumn-len(indent)-1, code, comment)
	}
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// Codef formats and writes an indented instruction line.
func (w Writer) Codef(format string, args ...any) error {
	return w.Code(fmt.Sprintf(format, args...))
}

// Block writes a raw template block, terminating it with a newline
// if it does not end with one.
func (w Writer) Block(block string) error {
	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	if _, err := io.WriteString(w.writer, block); err != nil {
		return fmt.Errorf("writing block: %w", err)
	}
	return nil
}
