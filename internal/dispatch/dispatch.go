// Package dispatch contains the protocol between a token sequence driver and
// the backends that execute or translate the operations.
// It acts as the bridge between the lexer output and the interpreter or compiler.
package dispatch

import (
	"fmt"
	"io"

	"github.com/retroenv/bfck/internal/token"
)

// Handler is implemented by every backend. Each operation method receives the
// repeat count of the token, the full token sequence for jump lookahead, the
// output sink and the instruction pointer. A method must advance the
// instruction pointer, either by one or by setting it to a jump target.
type Handler interface {
	// MoveLeft moves the data pointer count cells to the left.
	MoveLeft(count int, tokens []token.Token, w io.Writer, ip *int) error
	// MoveRight moves the data pointer count cells to the right.
	MoveRight(count int, tokens []token.Token, w io.Writer, ip *int) error
	// Increment adds count to the current cell.
	Increment(count int, tokens []token.Token, w io.Writer, ip *int) error
	// Decrement subtracts count from the current cell.
	Decrement(count int, tokens []token.Token, w io.Writer, ip *int) error
	// Write outputs the current cell count times.
	Write(count int, tokens []token.Token, w io.Writer, ip *int) error
	// Read reads count bytes into the current cell.
	Read(count int, tokens []token.Token, w io.Writer, r io.Reader, ip *int) error
	// JumpIfZero starts a loop.
	JumpIfZero(count int, tokens []token.Token, w io.Writer, ip *int) error
	// JumpUnlessZero ends a loop.
	JumpUnlessZero(count int, tokens []token.Token, w io.Writer, ip *int) error
	// Finish is called exactly once after all tokens have been dispatched.
	Finish(w io.Writer) error
}

// Step dispatches the token at the instruction pointer to the matching
// handler method. It does not interpret jump semantics.
func Step(h Handler, tokens []token.Token, w io.Writer, r io.Reader, ip *int) error {
	tok := tokens[*ip]

	switch tok.Kind {
	case token.MoveLeft:
		return h.MoveLeft(tok.Count, tokens, w, ip)
	case token.MoveRight:
		return h.MoveRight(tok.Count, tokens, w, ip)
	case token.Increment:
		return h.Increment(tok.Count, tokens, w, ip)
	case token.Decrement:
		return h.Decrement(tok.Count, tokens, w, ip)
	case token.Write:
		return h.Write(tok.Count, tokens, w, ip)
	case token.Read:
		return h.Read(tok.Count, tokens, w, r, ip)
	case token.JumpIfZero:
		return h.JumpIfZero(tok.Count, tokens, w, ip)
	case token.JumpUnlessZero:
		return h.JumpUnlessZero(tok.Count, tokens, w, ip)
	default:
		return fmt.Errorf("unsupported token kind %s at position %d", tok.Kind, *ip)
	}
}

// Driver walks a token sequence and hands every token to its handler.
type Driver struct {
	handler Handler
	reader  io.Reader
	writer  io.Writer

	instructionPointer int
}

// New returns a new driver for the given backend. The writer receives all
// output of the program, the reader is the input source for Read operations.
func New(handler Handler, writer io.Writer, reader io.Reader) *Driver {
	return &Driver{
		handler: handler,
		reader:  reader,
		writer:  writer,
	}
}

// Run dispatches every token of the sequence, starting at the first one,
// and finishes the handler afterwards. The first handler error aborts the run
// without finishing the handler.
func (d *Driver) Run(tokens []token.Token) error {
	d.instructionPointer = 0

	for d.instructionPointer < len(tokens) {
		position := d.instructionPointer
		if err := Step(d.handler, tokens, d.writer, d.reader, &d.instructionPointer); err != nil {
			return fmt.Errorf("executing %s at position %d: %w", tokens[position].Kind, position, err)
		}
	}

	if err := d.handler.Finish(d.writer); err != nil {
		return fmt.Errorf("finishing: %w", err)
	}
	return nil
}

// InstructionPointer returns the current instruction pointer.
func (d *Driver) InstructionPointer() int {
	return d.instructionPointer
}
