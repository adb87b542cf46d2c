// Package assembler provides the invocation of the external flat assembler
// that turns the generated assembly file into an executable.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Fasm is the default name of the flat assembler binary.
const Fasm = "fasm"

// ErrNotInstalled is returned when the assembler binary can not be found.
var ErrNotInstalled = errors.New("assembler is not installed")

// BinaryName returns the name of the assembler binary to look up, the
// default fasm binary is used if no name is given.
func BinaryName(binary string) string {
	if binary == "" {
		binary = Fasm
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(binary, ".exe") {
		binary += ".exe"
	}
	return binary
}

// AssembleUsingExternalApp calls the external assembler to generate an
// executable from the given asm file.
func AssembleUsingExternalApp(ctx context.Context, asmFile, outputFile, binary string) error {
	assembler := BinaryName(binary)

	path, err := exec.LookPath(assembler)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotInstalled, assembler)
	}

	cmd := exec.CommandContext(ctx, path, asmFile, outputFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("assembling file: %s: %w", strings.TrimSpace(string(out)), err)
	}

	return nil
}

// ExitCode returns the exit code of a failed assembler process contained in
// the error chain.
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	return exitErr.ExitCode(), true
}
