// Package config handles application configuration and setup
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/bfck/internal/compiler"
	"github.com/retroenv/bfck/internal/interpreter"
	"github.com/retroenv/retrogolib/log"
	"gopkg.in/yaml.v3"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Config represents the optional YAML configuration file.
type Config struct {
	// TapeSize is the amount of cells that the generated executable reserves.
	TapeSize int `yaml:"tape_size"`

	// Capacity is the initial amount of tape cells of the interpreter.
	Capacity int `yaml:"capacity"`

	// Assembler is the name or path of the fasm binary.
	Assembler string `yaml:"assembler,omitempty"`

	// History is the SQLite database that stores the REPL history.
	History string `yaml:"history,omitempty"`

	// Comments annotates the generated assembly with the source tokens.
	Comments bool `yaml:"comments,omitempty"`
}

// Default returns the configuration that is used without a config file.
func Default() Config {
	return Config{
		TapeSize: compiler.DefaultTapeSize,
		Capacity: interpreter.DefaultCapacity,
	}
}

// Load reads and parses a configuration file. An empty path returns the
// default configuration.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses configuration content, unset values keep their defaults.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.validate(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the configuration for semantic errors.
func (c Config) validate(path string) error {
	if c.TapeSize <= 0 {
		return fmt.Errorf("%s: tape_size must be positive, got %d", path, c.TapeSize)
	}
	if c.Capacity < 2 {
		return fmt.Errorf("%s: capacity must be at least 2, got %d", path, c.Capacity)
	}
	return nil
}
