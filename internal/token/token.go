// Package token defines the run-length encoded operations of a Brainfuck program.
package token

import (
	"fmt"
	"strings"
)

// Kind is one of the 8 operations of the language.
type Kind uint8

// The operation kinds, each mapped to a single source byte.
const (
	MoveLeft       Kind = iota // <
	MoveRight                  // >
	Increment                  // +
	Decrement                  // -
	Write                      // .
	Read                       // ,
	JumpIfZero                 // [
	JumpUnlessZero             // ]
)

var symbols = [...]byte{
	MoveLeft:       '<',
	MoveRight:      '>',
	Increment:      '+',
	Decrement:      '-',
	Write:          '.',
	Read:           ',',
	JumpIfZero:     '[',
	JumpUnlessZero: ']',
}

var names = [...]string{
	MoveLeft:       "MoveLeft",
	MoveRight:      "MoveRight",
	Increment:      "Increment",
	Decrement:      "Decrement",
	Write:          "Write",
	Read:           "Read",
	JumpIfZero:     "JumpIfZero",
	JumpUnlessZero: "JumpUnlessZero",
}

// KindFromByte returns the operation kind of a source byte. All bytes that
// are not one of the 8 operations are comments and return false.
func KindFromByte(b byte) (Kind, bool) {
	switch b {
	case '<':
		return MoveLeft, true
	case '>':
		return MoveRight, true
	case '+':
		return Increment, true
	case '-':
		return Decrement, true
	case '.':
		return Write, true
	case ',':
		return Read, true
	case '[':
		return JumpIfZero, true
	case ']':
		return JumpUnlessZero, true
	default:
		return 0, false
	}
}

// Symbol returns the source byte of the kind.
func (k Kind) Symbol() byte {
	if int(k) >= len(symbols) {
		return '?'
	}
	return symbols[k]
}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	if int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return names[k]
}

// Token is an operation kind paired with the number of consecutive source
// occurrences it represents.
type Token struct {
	Kind  Kind
	Count int
}

// New returns a token of the given kind and repeat count.
func New(kind Kind, count int) Token {
	return Token{Kind: kind, Count: count}
}

// Same returns whether both tokens are of the same kind, ignoring the count.
// This is the equality used to merge runs of repeated operations.
func (t Token) Same(other Token) bool {
	return t.Kind == other.Kind
}

// String renders the token as count followed by its source symbol, for example "3>".
func (t Token) String() string {
	return fmt.Sprintf("%d%c", t.Count, t.Kind.Symbol())
}

// GoString is used by %#v and in test failure output.
func (t Token) GoString() string {
	return fmt.Sprintf("%s(%d)", t.Kind, t.Count)
}

// Format renders a token sequence in its canonical, comment free form.
func Format(tokens []Token) string {
	buf := &strings.Builder{}
	for _, t := range tokens {
		buf.WriteString(t.String())
	}
	return buf.String()
}

// Expand renders a token sequence back into source form with every run
// written out in full.
func Expand(tokens []Token) string {
	buf := &strings.Builder{}
	for _, t := range tokens {
		for range t.Count {
			buf.WriteByte(t.Kind.Symbol())
		}
	}
	return buf.String()
}

// Contains returns whether any token of the sequence is of the given kind.
func Contains(tokens []Token, kind Kind) bool {
	for _, t := range tokens {
		if t.Kind == kind {
			return true
		}
	}
	return false
}
