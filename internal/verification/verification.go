// Package verification verifies that a generated executable produces the same
// output as the interpreter for the same program.
package verification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/retroenv/bfck/internal/dispatch"
	"github.com/retroenv/bfck/internal/interpreter"
	"github.com/retroenv/bfck/internal/token"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrOutputMismatch is returned when the executable output differs from the interpreter output.
	ErrOutputMismatch = errors.New("output mismatch")
	// ErrReadNotSupported is returned for programs that read input, the executable ignores reads.
	ErrReadNotSupported = errors.New("programs reading input can not be verified")
)

// VerifyExecutable runs the executable without input and compares its output
// with the output of the interpreter for the given tokens.
func VerifyExecutable(ctx context.Context, logger *log.Logger, executable string,
	tokens []token.Token, capacity int) error {

	if token.Contains(tokens, token.Read) {
		return ErrReadNotSupported
	}

	var expected bytes.Buffer
	driver := dispatch.New(interpreter.NewWithCapacity(capacity), &expected, bytes.NewReader(nil))
	if err := driver.Run(tokens); err != nil {
		return fmt.Errorf("interpreting program: %w", err)
	}

	cmd := exec.CommandContext(ctx, executable)
	cmd.Stdin = bytes.NewReader(nil)
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("running executable '%s': %w", executable, err)
	}

	if err := checkBufferEqual(logger, expected.Bytes(), output); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputMismatch, err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, expected, output []byte) error {
	var diffs uint64
	for i := range min(len(expected), len(output)) {
		if expected[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", expected[i]),
				log.Hex("got", output[i]))
		}
	}

	if len(expected) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(expected), len(output))
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
