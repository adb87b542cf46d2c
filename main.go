// Package main implements the main entry point for a Brainfuck interpreter
// and compiler that generates fasm assembly for Linux x86-64.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/bfck/internal/assembler"
	"github.com/retroenv/bfck/internal/cli"
	"github.com/retroenv/bfck/internal/config"
	"github.com/retroenv/bfck/internal/fileprocessor"
	"github.com/retroenv/bfck/internal/history"
	"github.com/retroenv/bfck/internal/options"
	"github.com/retroenv/bfck/internal/repl"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	cfg, err := config.Load(opts.Config)
	if err != nil {
		logger.Error("Loading config failed", log.Err(err))
		os.Exit(1)
	}
	if opts.Comments {
		cfg.Comments = true
	}
	if opts.History != "" {
		cfg.History = opts.History
	}

	if opts.Mode() == options.REPL {
		if err := runREPL(logger, cfg); err != nil {
			logger.Error("REPL failed", log.Err(err))
			os.Exit(1)
		}
		return
	}

	// the output of interpreted programs is not mixed with the banner
	if opts.Mode() != options.Interpret {
		fileprocessor.PrintBanner(logger, opts, version, commit, date)
	}

	if code := processFiles(ctx, logger, opts, cfg); code != 0 {
		os.Exit(code)
	}
}

func runREPL(logger *log.Logger, cfg config.Config) error {
	store, err := history.Open(cfg.History)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	r := repl.New(logger, cfg, store, os.Stdin, os.Stdout)
	if err := r.Run(); err != nil {
		return fmt.Errorf("running REPL: %w", err)
	}
	return nil
}

// processFiles processes all source files and returns the exit code of the
// last failure, the exit code of a failed assembler is passed through.
func processFiles(ctx context.Context, logger *log.Logger, opts options.Program, cfg config.Config) int {
	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Error("Getting files to process failed", log.Err(err))
		return 1
	}

	batch := opts.Batch != ""
	exitCode := 0

	for _, file := range files {
		opts.Input = file
		opts.Output = fileprocessor.OutputFilename(opts, file, batch)

		if err := fileprocessor.ProcessFile(ctx, logger, opts, cfg, os.Stdin, os.Stdout); err != nil {
			// Handle context cancellation (Ctrl+C) gracefully
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return 1
			}

			logger.Error("Processing failed", log.String("file", file), log.Err(err))
			exitCode = 1
			if code, ok := assembler.ExitCode(err); ok && code > 0 {
				exitCode = code
			}
		}
	}
	return exitCode
}
