package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/bfck/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test functions can be long
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
		mode options.Mode
	}{
		{
			name: "no arguments",
			args: []string{"prog"},
			want: options.Program{},
			mode: options.REPL,
		},
		{
			name: "history database",
			args: []string{"prog", "-history", "history.db"},
			want: options.Program{Parameters: options.Parameters{History: "history.db"}},
			mode: options.REPL,
		},
		{
			name: "executable",
			args: []string{"prog", "hello.bf"},
			want: options.Program{Parameters: options.Parameters{Input: "hello.bf"}},
			mode: options.Executable,
		},
		{
			name: "executable with output and verify",
			args: []string{"prog", "-verify", "hello.bf", "hello"},
			want: options.Program{
				Parameters: options.Parameters{Input: "hello.bf", Output: "hello"},
				Flags:      options.Flags{AssembleTest: true},
			},
			mode: options.Executable,
		},
		{
			name: "assembly",
			args: []string{"prog", "-s", "-comments", "hello.bf", "hello.s"},
			want: options.Program{
				Parameters: options.Parameters{Input: "hello.bf", Output: "hello.s"},
				Flags:      options.Flags{Assembly: true, Comments: true},
			},
			mode: options.Assembly,
		},
		{
			name: "run",
			args: []string{"prog", "-run", "-debug", "-c", "bfck.yaml", "hello.bf"},
			want: options.Program{
				Parameters: options.Parameters{Input: "hello.bf", Config: "bfck.yaml"},
				Flags:      options.Flags{Run: true, Debug: true},
			},
			mode: options.Interpret,
		},
		{
			name: "batch",
			args: []string{"prog", "-q", "-s", "-batch", "*.bf"},
			want: options.Program{
				Parameters: options.Parameters{Batch: "*.bf"},
				Flags:      options.Flags{Assembly: true, Quiet: true},
			},
			mode: options.Assembly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			got, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.mode, got.Mode())
		})
	}
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "help", args: []string{"-h"}, message: ""},
		{name: "unknown flag", args: []string{"-x"}, message: "flag provided but not defined: -x"},
		{name: "flag after source", args: []string{"hello.bf", "-s"}, message: "Potential argument -s found after the source file"},
		{name: "too many arguments", args: []string{"a.bf", "b", "c"}, message: "Too many arguments"},
		{name: "batch with source", args: []string{"-batch", "*.bf", "a.bf"}, message: "can not be combined with batch processing"},
		{name: "run and assembly", args: []string{"-run", "-s", "a.bf"}, message: "The -run and -s options can not be combined"},
		{name: "run with output", args: []string{"-run", "a.bf", "out"}, message: "does not support an output file"},
		{name: "verify assembly", args: []string{"-verify", "-s", "a.bf"}, message: "requires building an executable"},
		{name: "run without source", args: []string{"-run"}, message: "Missing source file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs("prog", tt.args)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.NotNil(t, usageErr.flags)
			if tt.message == "" {
				assert.Equal(t, "", usageErr.Error())
			} else {
				assert.ErrorContains(t, err, tt.message)
			}
		})
	}
}
