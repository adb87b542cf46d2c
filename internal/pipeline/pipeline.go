// Package pipeline orchestrates the workflow stages from the source code to
// the output of the selected backend.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/bfck/internal/assembler"
	"github.com/retroenv/bfck/internal/compiler"
	"github.com/retroenv/bfck/internal/config"
	"github.com/retroenv/bfck/internal/dispatch"
	"github.com/retroenv/bfck/internal/interpreter"
	"github.com/retroenv/bfck/internal/lexer"
	"github.com/retroenv/bfck/internal/token"
	"github.com/retroenv/bfck/internal/verification"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates tokenizing, dispatching and the backends.
type Pipeline struct {
	logger *log.Logger
	cfg    config.Config
}

// New creates a new pipeline.
func New(logger *log.Logger, cfg config.Config) *Pipeline {
	return &Pipeline{
		logger: logger,
		cfg:    cfg,
	}
}

// Interpret executes the program, reading input from in and writing the
// program output to out.
func (p *Pipeline) Interpret(source []byte, in io.Reader, out io.Writer) error {
	tokens := p.tokenize(source)

	intr := interpreter.NewWithCapacity(p.cfg.Capacity)
	driver := dispatch.New(intr, out, in)
	if err := driver.Run(tokens); err != nil {
		return fmt.Errorf("interpreting: %w", err)
	}

	p.logger.Debug("Program finished",
		log.Int("instructionPointer", driver.InstructionPointer()),
		log.Int("dataPointer", intr.DataPointer()),
		log.Int("tapeSize", len(intr.Tape())))
	return nil
}

// Assemble writes the generated assembly of the program to out.
func (p *Pipeline) Assemble(source []byte, out io.Writer) error {
	tokens := p.tokenize(source)
	return p.assemble(tokens, out)
}

// Compile generates the assembly of the program and builds the executable
// output using the external assembler. The intermediate assembly file is
// removed afterwards. If verify is set, the executable output is compared to
// the interpreter output.
func (p *Pipeline) Compile(ctx context.Context, source []byte, output string, verify bool) error {
	tokens := p.tokenize(source)

	asmFile, err := os.CreateTemp("", "bfck.*.s")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(asmFile.Name())
	}()

	if err := p.assemble(tokens, asmFile); err != nil {
		_ = asmFile.Close()
		return err
	}
	if err := asmFile.Close(); err != nil {
		return fmt.Errorf("closing assembly file: %w", err)
	}

	if err := assembler.AssembleUsingExternalApp(ctx, asmFile.Name(), output, p.cfg.Assembler); err != nil {
		return fmt.Errorf("building executable: %w", err)
	}
	p.logger.Debug("Executable built", log.String("file", output))

	if !verify {
		return nil
	}
	if err := verification.VerifyExecutable(ctx, p.logger, output, tokens, p.cfg.Capacity); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	p.logger.Info("Verification successful")
	return nil
}

func (p *Pipeline) assemble(tokens []token.Token, out io.Writer) error {
	if token.Contains(tokens, token.Read) {
		p.logger.Warn("Program reads input, reads are not supported by the generated code and will be ignored")
	}

	comp := compiler.New(compiler.Options{
		TapeSize: p.cfg.TapeSize,
		Comments: p.cfg.Comments,
	})
	driver := dispatch.New(comp, out, nil)
	if err := driver.Run(tokens); err != nil {
		return fmt.Errorf("compiling: %w", err)
	}
	return nil
}

func (p *Pipeline) tokenize(source []byte) []token.Token {
	tokens := lexer.Tokenize(source)
	p.logger.Debug("Tokenized source",
		log.Int("bytes", len(source)),
		log.Int("tokens", len(tokens)))
	return tokens
}
