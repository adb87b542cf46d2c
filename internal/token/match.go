package token

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmatchedOpenBracket is returned when a JumpIfZero has no matching JumpUnlessZero.
	ErrUnmatchedOpenBracket = errors.New("unmatched open bracket")
	// ErrUnmatchedCloseBracket is returned when a JumpUnlessZero has no matching JumpIfZero.
	ErrUnmatchedCloseBracket = errors.New("unmatched close bracket")
)

// Direction selects the scan direction of a bracket match.
type Direction int

const (
	// Forward scans from a JumpIfZero towards the end of the sequence.
	Forward Direction = iota
	// Backward scans from a JumpUnlessZero towards the start of the sequence.
	Backward
)

// Match returns the index of the bracket token that matches the bracket token
// at the given position.
//
// A forward scan starts with all Count brackets of the opening token open, as
// the first bracket of a run is the outermost one. A backward scan starts with
// a single open bracket, as only the first bracket of a closing run jumps.
// Every further bracket token adds or subtracts its whole count. The match is
// the first token at which the counter drops to zero or below; when it drops
// below zero the match sits inside a run, and the remaining brackets of that
// run fall through without effect, so jumping past the whole token is
// equivalent.
func Match(tokens []Token, position int, direction Direction) (int, error) {
	if direction == Backward {
		return matchBackward(tokens, position)
	}
	return matchForward(tokens, position)
}

func matchForward(tokens []Token, position int) (int, error) {
	open := tokens[position].Count
	for i := position + 1; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case JumpIfZero:
			open += tokens[i].Count
		case JumpUnlessZero:
			open -= tokens[i].Count
			if open <= 0 {
				return i, nil
			}
		default:
		}
	}
	return 0, fmt.Errorf("%w at position %d", ErrUnmatchedOpenBracket, position)
}

func matchBackward(tokens []Token, position int) (int, error) {
	open := 1
	for i := position - 1; i >= 0; i-- {
		switch tokens[i].Kind {
		case JumpUnlessZero:
			open += tokens[i].Count
		case JumpIfZero:
			open -= tokens[i].Count
			if open <= 0 {
				return i, nil
			}
		default:
		}
	}
	return 0, fmt.Errorf("%w at position %d", ErrUnmatchedCloseBracket, position)
}
