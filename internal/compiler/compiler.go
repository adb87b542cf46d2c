// Package compiler implements a backend that translates the tokens into
// x86-64 flat assembler source for a Linux ELF64 executable.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/bfck/internal/dispatch"
	"github.com/retroenv/bfck/internal/token"
	"github.com/retroenv/bfck/internal/writer"
	"github.com/retroenv/retrogolib/set"
)

// DefaultTapeSize is the amount of cells reserved for the tape of the executable.
const DefaultTapeSize = 30000

var (
	// ErrUnreachableJump is returned for a JumpUnlessZero that does not close an open loop.
	ErrUnreachableJump = errors.New("unreachable jump")
	// ErrAlreadyFinished is returned when the output is requested a second time.
	ErrAlreadyFinished = errors.New("compiler already finished")
)

// Compile-time check to ensure Compiler implements dispatch.Handler.
var _ dispatch.Handler = (*Compiler)(nil)

// Helper is a shared subroutine that is appended to the output when used.
type Helper int

const (
	MultiIncrement Helper = iota
	MultiDecrement
	MultiMoveRight
	MultiMoveLeft
	Write
	LoopExit
)

// helperOrder is the order that used helpers are written in.
var helperOrder = []Helper{MultiIncrement, MultiDecrement, MultiMoveRight, MultiMoveLeft, Write, LoopExit}

var helperBlocks = map[Helper]string{
	MultiIncrement: multiIncrement,
	MultiDecrement: multiDecrement,
	MultiMoveRight: multiMoveRight,
	MultiMoveLeft:  multiMoveLeft,
	Write:          write,
	LoopExit:       loopExit,
}

var helperLabels = map[Helper]string{
	MultiIncrement: "_u",
	MultiDecrement: "_d",
	MultiMoveRight: "_r",
	MultiMoveLeft:  "_l",
	Write:          "_w",
	LoopExit:       "_b",
}

// Label returns the label of the helper subroutine.
func (h Helper) Label() string {
	return helperLabels[h]
}

// Options of the compiler.
type Options struct {
	TapeSize int  // cells reserved for the tape, DefaultTapeSize if not set
	Comments bool // annotate the first instruction of every token with the token
}

// Compiler collects the generated code of all operations and writes the
// complete assembly file when finished. The writer passed to the operations
// is not used, the output is only written by Finish.
type Compiler struct {
	options Options
	helpers set.Set[Helper]

	main    *strings.Builder
	current *writer.Writer // destination of the operation currently compiled
	blocks  []string       // rendered loop headers and bodies, innermost first

	loopCounter  int
	depth        int // amount of currently open loops
	pendingClose int // loops that the last JumpUnlessZero token still has to close
	finished     bool
}

// New returns a new compiler.
func New(options Options) *Compiler {
	if options.TapeSize <= 0 {
		options.TapeSize = DefaultTapeSize
	}

	main := &strings.Builder{}
	return &Compiler{
		options: options,
		helpers: set.New[Helper](),
		main:    main,
		current: writer.New(main),
	}
}

// Uses returns whether the helper subroutine is part of the output.
func (c *Compiler) Uses(helper Helper) bool {
	return c.helpers.Contains(helper)
}

// MoveLeft emits a single pointer decrement or a call of the multi move helper.
func (c *Compiler) MoveLeft(count int, _ []token.Token, _ io.Writer, ip *int) error {
	return c.emitRepeatable(token.MoveLeft, count, "dec ebx", MultiMoveLeft, ip)
}

// MoveRight emits a single pointer increment or a call of the multi move helper.
func (c *Compiler) MoveRight(count int, _ []token.Token, _ io.Writer, ip *int) error {
	return c.emitRepeatable(token.MoveRight, count, "inc ebx", MultiMoveRight, ip)
}

// Increment emits a single cell increment or a call of the multi increment helper.
func (c *Compiler) Increment(count int, _ []token.Token, _ io.Writer, ip *int) error {
	return c.emitRepeatable(token.Increment, count, "inc byte [ebx]", MultiIncrement, ip)
}

// Decrement emits a single cell decrement or a call of the multi decrement helper.
func (c *Compiler) Decrement(count int, _ []token.Token, _ io.Writer, ip *int) error {
	return c.emitRepeatable(token.Decrement, count, "dec byte [ebx]", MultiDecrement, ip)
}

// Write emits a call of the write helper for every output.
func (c *Compiler) Write(count int, _ []token.Token, _ io.Writer, ip *int) error {
	c.helpers.Add(Write)
	comment := c.comment(token.Write, count)
	for range count {
		if err := c.current.CodeWithComment("call "+Write.Label(), comment); err != nil {
			return err
		}
		comment = ""
	}
	*ip++
	return nil
}

// Read is not supported by the generated executable and only advances the
// instruction pointer.
func (c *Compiler) Read(_ int, _ []token.Token, _ io.Writer, _ io.Reader, ip *int) error {
	*ip++
	return nil
}

// JumpIfZero opens count nested loops. The call of the outermost loop header
// is emitted at the current position, the loop bodies are rendered by
// compiling the following tokens until the loops are closed again.
func (c *Compiler) JumpIfZero(count int, tokens []token.Token, w io.Writer, ip *int) error {
	start := *ip
	*ip++

	if err := c.openLoop(count, start, tokens, w, ip); err != nil {
		return err
	}

	if c.depth == 0 && c.pendingClose > 0 {
		return fmt.Errorf("%w: %d more closing brackets than open loops before position %d",
			ErrUnreachableJump, c.pendingClose, *ip)
	}
	return nil
}

// JumpUnlessZero marks count open loops as closed. The loop rendering of
// JumpIfZero picks up the closes, a close without an open loop is an error.
func (c *Compiler) JumpUnlessZero(count int, _ []token.Token, _ io.Writer, ip *int) error {
	if c.depth == 0 {
		return fmt.Errorf("%w at position %d", ErrUnreachableJump, *ip)
	}
	c.pendingClose = count
	*ip++
	return nil
}

// Finish writes the complete assembly file to the writer.
func (c *Compiler) Finish(w io.Writer) error {
	if c.finished {
		return ErrAlreadyFinished
	}
	c.finished = true

	out := writer.New(w)
	if err := out.Block(fmt.Sprintf(preamble, c.options.TapeSize)); err != nil {
		return fmt.Errorf("writing preamble: %w", err)
	}
	if c.main.Len() > 0 {
		if err := out.Block(c.main.String()); err != nil {
			return fmt.Errorf("writing main code: %w", err)
		}
	}
	if err := out.Code("jmp _e"); err != nil {
		return fmt.Errorf("writing exit jump: %w", err)
	}

	for _, block := range c.blocks {
		if err := out.Block(block); err != nil {
			return fmt.Errorf("writing loop block: %w", err)
		}
	}

	for _, helper := range helperOrder {
		if !c.helpers.Contains(helper) {
			continue
		}
		if err := out.Block(helperBlocks[helper]); err != nil {
			return fmt.Errorf("writing helper %s: %w", helper.Label(), err)
		}
	}
	return nil
}

// openLoop emits the header call of a new loop and renders its body into a
// separate buffer. Nested loops of the same token are opened recursively
// inside the body. The body ends once a JumpUnlessZero closed it.
func (c *Compiler) openLoop(nested, start int, tokens []token.Token, w io.Writer, ip *int) error {
	label := c.loopCounter
	c.loopCounter++
	c.depth++
	c.helpers.Add(LoopExit)

	if err := c.current.Codef("call _h%d", label); err != nil {
		return err
	}

	parent := c.current
	body := &strings.Builder{}
	c.current = writer.New(body)
	defer func() {
		c.current = parent
	}()

	if nested > 1 {
		if err := c.openLoop(nested-1, start, tokens, w, ip); err != nil {
			return err
		}
	}

	for c.pendingClose == 0 {
		if *ip >= len(tokens) {
			return fmt.Errorf("%w at position %d", token.ErrUnmatchedOpenBracket, start)
		}
		position := *ip
		if err := dispatch.Step(c, tokens, w, nil, ip); err != nil {
			return fmt.Errorf("compiling %s at position %d: %w", tokens[position].Kind, position, err)
		}
	}

	c.pendingClose--
	c.depth--

	c.blocks = append(c.blocks, renderLoop(label, body.String()))
	return nil
}

// renderLoop returns the header and the body block of a loop. The header is
// called from the enclosing code and returns through the shared loop exit
// when the current cell is zero, otherwise it enters the body which repeats
// until the cell is zero.
func renderLoop(label int, body string) string {
	return fmt.Sprintf(loopHeader, label) + body + fmt.Sprintf(loopFooter, label)
}

// emitRepeatable emits the single instruction for a count of 1, otherwise
// loads the count into ecx and calls the helper that repeats the instruction.
func (c *Compiler) emitRepeatable(kind token.Kind, count int, single string, helper Helper, ip *int) error {
	comment := c.comment(kind, count)

	if count == 1 {
		if err := c.current.CodeWithComment(single, comment); err != nil {
			return err
		}
		*ip++
		return nil
	}

	c.helpers.Add(helper)
	if err := c.current.CodeWithComment(fmt.Sprintf("mov ecx, %d", count), comment); err != nil {
		return err
	}
	if err := c.current.Code("call " + helper.Label()); err != nil {
		return err
	}
	*ip++
	return nil
}

func (c *Compiler) comment(kind token.Kind, count int) string {
	if !c.options.Comments {
		return ""
	}
	return token.New(kind, count).String()
}
