// Package fileprocessor handles source file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/bfck/internal/config"
	"github.com/retroenv/bfck/internal/options"
	"github.com/retroenv/bfck/internal/pipeline"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile handles the complete file processing workflow of the file based
// modes. In the interpret mode the program reads from in and writes to out.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, cfg config.Config,
	in io.Reader, out io.Writer) error {

	source, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("reading source file %s: %w", opts.Input, err)
	}

	pipe := pipeline.New(logger, cfg)
	mode := opts.Mode()

	switch mode {
	case options.Interpret:
		return pipe.Interpret(source, in, out)

	case options.Assembly:
		logger.Info("Generating assembly", log.String("file", opts.Input), log.String("output", opts.Output))
		writer, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", opts.Output, err)
		}
		if err := pipe.Assemble(source, writer); err != nil {
			_ = writer.Close()
			return err
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("closing output file %s: %w", opts.Output, err)
		}
		return nil

	case options.Executable:
		logger.Info("Building executable", log.String("file", opts.Input), log.String("output", opts.Output))
		return pipe.Compile(ctx, source, opts.Output, opts.AssembleTest)

	default:
		return fmt.Errorf("unsupported file processing mode '%s'", mode)
	}
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// OutputFilename returns the output file for the given input file. Batch
// processing always derives the name from the input file, otherwise the
// given output or the default output of the mode is used.
func OutputFilename(opts options.Program, inputFile string, batch bool) string {
	mode := opts.Mode()
	if mode == options.Interpret || mode == options.REPL {
		return ""
	}
	if batch {
		return GenerateOutputFilename(inputFile, mode)
	}
	if opts.Output != "" {
		return opts.Output
	}
	if mode == options.Assembly {
		return options.DefaultAssemblyOutput
	}
	return options.DefaultExecutableOutput
}

// GenerateOutputFilename generates output filename for a given input file,
// an assembly file for the assembly mode and an extension free executable
// name otherwise.
func GenerateOutputFilename(inputFile string, mode options.Mode) string {
	ext := filepath.Ext(inputFile)
	base := inputFile[:len(inputFile)-len(ext)]

	if mode == options.Assembly {
		return base + ".s"
	}
	if base == inputFile {
		// the source file has no extension, do not overwrite it
		return base + ".out"
	}
	return base
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("bfck", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
