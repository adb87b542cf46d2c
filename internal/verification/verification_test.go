package verification

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/retroenv/bfck/internal/interpreter"
	"github.com/retroenv/bfck/internal/lexer"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func writeScript(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a posix shell")
	}

	path := filepath.Join(t.TempDir(), "program")
	script := "#!/bin/sh\nprintf '" + output + "'\n"
	assert.NoError(t, os.WriteFile(path, []byte(script), 0700))
	return path
}

func TestVerifyExecutable(t *testing.T) {
	logger := log.NewTestLogger(t)
	tokens := lexer.TokenizeString(strings.Repeat("+", 65) + ".+.")

	executable := writeScript(t, "AB")
	err := VerifyExecutable(context.Background(), logger, executable, tokens, interpreter.DefaultCapacity)
	assert.NoError(t, err)
}

func TestVerifyExecutableMismatch(t *testing.T) {
	logger := log.NewNop()
	tokens := lexer.TokenizeString(strings.Repeat("+", 65) + ".+.")

	executable := writeScript(t, "AC")
	err := VerifyExecutable(context.Background(), logger, executable, tokens, interpreter.DefaultCapacity)
	assert.True(t, errors.Is(err, ErrOutputMismatch))
	assert.ErrorContains(t, err, "1 offset mismatches")

	executable = writeScript(t, "A")
	err = VerifyExecutable(context.Background(), logger, executable, tokens, interpreter.DefaultCapacity)
	assert.True(t, errors.Is(err, ErrOutputMismatch))
	assert.ErrorContains(t, err, "mismatched lengths, 2 != 1")
}

func TestVerifyExecutableRejectsRead(t *testing.T) {
	logger := log.NewTestLogger(t)
	tokens := lexer.TokenizeString(",.")

	err := VerifyExecutable(context.Background(), logger, "unused", tokens, interpreter.DefaultCapacity)
	assert.True(t, errors.Is(err, ErrReadNotSupported))
}

func TestCheckBufferEqual(t *testing.T) {
	logger := log.NewNop()

	assert.NoError(t, checkBufferEqual(logger, []byte("abc"), []byte("abc")))
	assert.NoError(t, checkBufferEqual(logger, nil, nil))
	assert.ErrorContains(t, checkBufferEqual(logger, []byte("abc"), []byte("xbz")), "2 offset mismatches")
	assert.ErrorContains(t, checkBufferEqual(logger, []byte("ab"), []byte("abc")), "mismatched lengths")
}
