// Package lexer converts Brainfuck source code into run-length encoded tokens.
package lexer

import "github.com/retroenv/bfck/internal/token"

// run accumulates consecutive operations of the same kind until a different
// operation closes it.
type run struct {
	kind  token.Kind
	count int
}

// Tokenize scans the source left to right and returns the sequence of
// run-length encoded tokens. Bytes that are not operations are comments:
// they are skipped and do not interrupt a run, so "<< <<" results in a single
// MoveLeft token with a count of 4.
//
// No validation of the program is done here, unbalanced brackets are reported
// by the backends.
func Tokenize(source []byte) []token.Token {
	var tokens []token.Token
	var current *run

	for _, b := range source {
		kind, ok := token.KindFromByte(b)
		if !ok {
			continue
		}

		if current != nil && current.kind == kind {
			current.count++
			continue
		}

		if current != nil {
			tokens = append(tokens, token.New(current.kind, current.count))
		}
		current = &run{kind: kind, count: 1}
	}

	if current != nil {
		tokens = append(tokens, token.New(current.kind, current.count))
	}
	return tokens
}

// TokenizeString is a convenience wrapper of Tokenize for string sources.
func TokenizeString(source string) []token.Token {
	return Tokenize([]byte(source))
}
