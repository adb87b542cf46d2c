// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/bfck/internal/options"
)

// ParseFlags parses the command line arguments of the process.
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts options.Program
	readOptionFlags(flags, &opts)

	if err := flags.Parse(arguments); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	args := flags.Args()
	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}
	if len(args) > 1 {
		opts.Output = args[1]
	}

	if err := validateOptionCombinations(flags, opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information and the error message if set.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: bfck [options] [source file] [output file]\n\n")
	fmt.Printf("  without a source file an interactive interpreter is started\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after the source file, please pass all options before the source file", arg),
			}
		}
	}
	if len(args) > 2 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("Too many arguments, expected a source and an output file but got %d arguments", len(args)),
		}
	}
	return nil
}

// validateOptionCombinations rejects flags that can not be used together.
func validateOptionCombinations(flags *flag.FlagSet, opts options.Program) error {
	var msg string

	switch {
	case opts.Batch != "" && opts.Input != "":
		msg = "A source file can not be combined with batch processing"
	case opts.Run && opts.Assembly:
		msg = "The -run and -s options can not be combined"
	case opts.Run && opts.Output != "":
		msg = "The -run option does not support an output file"
	case opts.AssembleTest && (opts.Run || opts.Assembly):
		msg = "The -verify option requires building an executable"
	case opts.Input == "" && opts.Batch == "" && (opts.Run || opts.Assembly || opts.AssembleTest):
		msg = "Missing source file"
	default:
		return nil
	}
	return &UsageError{flags: flags, msg: msg}
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Config, "c", "", "name of the YAML config file")
	flags.StringVar(&opts.History, "history", "", "name of the SQLite database to store the interactive history in")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically name the output files, for example *.bf")
	flags.BoolVar(&opts.Assembly, "s", false, "output the generated fasm assembly file instead of an executable")
	flags.BoolVar(&opts.Run, "run", false, "interpret the source file")
	flags.BoolVar(&opts.AssembleTest, "verify", false, "verify the built executable by comparing its output with the interpreter")
	flags.BoolVar(&opts.Comments, "comments", false, "annotate the generated assembly with the source tokens")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
