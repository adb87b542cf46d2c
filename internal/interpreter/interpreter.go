// Package interpreter implements a backend that executes the tokens directly
// on a simulated, unbounded tape of byte cells.
package interpreter

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/retroenv/bfck/internal/dispatch"
	"github.com/retroenv/bfck/internal/token"
)

const (
	// DefaultCapacity is the initial amount of cells of the tape.
	DefaultCapacity = 32
)

var (
	// ErrUnexpectedEndOfInput is returned when a Read runs out of input.
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	// ErrTapeCorrupted is returned when growing the tape moved the data pointer to a different cell.
	ErrTapeCorrupted = errors.New("tape corrupted")
)

// Compile-time check to ensure Interpreter implements dispatch.Handler.
var _ dispatch.Handler = (*Interpreter)(nil)

// Interpreter executes operations on the tape.
type Interpreter struct {
	tape        []byte
	dataPointer int
	increment   int // amount of cells added per growth step
}

// New returns a new interpreter with a tape of DefaultCapacity cells and the
// data pointer in its middle.
func New() *Interpreter {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity returns a new interpreter with a tape of the given capacity.
// The tape grows by half of the capacity whenever a move leaves its bounds.
func NewWithCapacity(capacity int) *Interpreter {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	increment := capacity / 2
	return &Interpreter{
		tape:        make([]byte, capacity),
		dataPointer: increment,
		increment:   increment,
	}
}

// DataPointer returns the index of the current cell.
func (i *Interpreter) DataPointer() int {
	return i.dataPointer
}

// Tape returns the cells of the tape. The slice must not be modified.
func (i *Interpreter) Tape() []byte {
	return i.tape
}

// Cell returns the value of the current cell.
func (i *Interpreter) Cell() byte {
	return i.tape[i.dataPointer]
}

// growLeft prepends amount growth steps of zero cells to the tape. The data
// pointer is moved by the amount of inserted cells so that it keeps pointing
// to the same cell.
func (i *Interpreter) growLeft(amount int) error {
	pointsTo := i.tape[i.dataPointer]
	total := i.increment * amount

	// append the new cells and rotate them to the front
	i.tape = append(i.tape, make([]byte, total)...)
	rotateRight(i.tape, total)
	i.dataPointer += total

	if i.tape[i.dataPointer] != pointsTo {
		return fmt.Errorf("%w: data pointer moved to a different cell after growing left", ErrTapeCorrupted)
	}
	return nil
}

// growRight appends amount growth steps of zero cells to the tape.
// The data pointer does not need to be adjusted.
func (i *Interpreter) growRight(amount int) {
	i.tape = append(i.tape, make([]byte, i.increment*amount)...)
}

// MoveLeft moves the data pointer count cells to the left, growing the tape
// first if the move would leave it.
func (i *Interpreter) MoveLeft(count int, _ []token.Token, _ io.Writer, ip *int) error {
	if count > i.dataPointer {
		difference := count - i.dataPointer
		if err := i.growLeft(divCeil(difference, i.increment)); err != nil {
			return err
		}
	}
	i.dataPointer -= count
	*ip++
	return nil
}

// MoveRight moves the data pointer count cells to the right, growing the tape
// first until the target cell is inside of it.
func (i *Interpreter) MoveRight(count int, _ []token.Token, _ io.Writer, ip *int) error {
	if i.dataPointer+count >= len(i.tape) {
		missing := i.dataPointer + count - len(i.tape) + 1
		i.growRight(divCeil(missing, i.increment))
	}
	i.dataPointer += count
	*ip++
	return nil
}

// Increment adds count to the current cell, wrapping around at 255.
func (i *Interpreter) Increment(count int, _ []token.Token, _ io.Writer, ip *int) error {
	i.tape[i.dataPointer] += byte(count)
	*ip++
	return nil
}

// Decrement subtracts count from the current cell, wrapping around at 0.
func (i *Interpreter) Decrement(count int, _ []token.Token, _ io.Writer, ip *int) error {
	i.tape[i.dataPointer] -= byte(count)
	*ip++
	return nil
}

// Write outputs the current cell count times.
func (i *Interpreter) Write(count int, _ []token.Token, w io.Writer, ip *int) error {
	cell := []byte{i.tape[i.dataPointer]}
	for range count {
		if _, err := w.Write(cell); err != nil {
			return fmt.Errorf("writing cell: %w", err)
		}
	}
	*ip++
	return nil
}

// Read reads count bytes one at a time into the current cell, every read
// overwriting the previous one.
func (i *Interpreter) Read(count int, _ []token.Token, _ io.Writer, r io.Reader, ip *int) error {
	if r == nil {
		return ErrUnexpectedEndOfInput
	}

	var buf [1]byte
	for range count {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrUnexpectedEndOfInput
			}
			return fmt.Errorf("reading input: %w", err)
		}
		i.tape[i.dataPointer] = buf[0]
	}
	*ip++
	return nil
}

// JumpIfZero skips past the matching JumpUnlessZero if the current cell is zero,
// otherwise it continues with the next instruction. The count of a merged run
// of brackets only matters for finding the match.
func (i *Interpreter) JumpIfZero(_ int, tokens []token.Token, _ io.Writer, ip *int) error {
	if i.tape[i.dataPointer] != 0 {
		*ip++
		return nil
	}

	target, err := token.Match(tokens, *ip, token.Forward)
	if err != nil {
		return fmt.Errorf("matching jump: %w", err)
	}
	*ip = target + 1
	return nil
}

// JumpUnlessZero jumps back to the instruction after the matching JumpIfZero
// if the current cell is not zero, otherwise it continues with the next instruction.
func (i *Interpreter) JumpUnlessZero(_ int, tokens []token.Token, _ io.Writer, ip *int) error {
	if i.tape[i.dataPointer] == 0 {
		*ip++
		return nil
	}

	target, err := token.Match(tokens, *ip, token.Backward)
	if err != nil {
		return fmt.Errorf("matching jump: %w", err)
	}
	*ip = target + 1
	return nil
}

// Finish does nothing for the interpreter, all output is written immediately.
func (i *Interpreter) Finish(_ io.Writer) error {
	return nil
}

func divCeil(a, b int) int {
	return (a + b - 1) / b
}

// rotateRight rotates the elements of the slice by n positions to the right.
func rotateRight(data []byte, n int) {
	if len(data) == 0 {
		return
	}
	n %= len(data)
	if n == 0 {
		return
	}
	slices.Reverse(data)
	slices.Reverse(data[:n])
	slices.Reverse(data[n:])
}
