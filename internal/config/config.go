// Package config loads and validates the optional .scriptrunner YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deixis/scriptrunner/internal/executor"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file.
const FileName = ".scriptrunner"

// Default values for executor configuration.
const (
	DefaultInterpreter = executor.DefaultInterpreter
	DefaultTimeout     = executor.DefaultTimeout
	DefaultMaxOutput   = 0 // unlimited
	DefaultLogLevel    = log.InfoLevel
)

// Config holds the parsed .scriptrunner configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int      `yaml:"version"`
	Interpreter  string   `yaml:"interpreter"` // binary resolved via PATH
	Args         []string `yaml:"args"`        // extra interpreter flags placed before -c
	RawTimeout   string   `yaml:"timeout"`     // default budget, e.g. "30s", "2m"
	RawMaxOutput int      `yaml:"max_output"`  // bytes per stream
	RawLogLevel  string   `yaml:"log_level"`   // debug, info, warn or error
}

// InterpreterName returns the configured interpreter or the default.
func (c *Config) InterpreterName() string {
	if c.Interpreter != "" {
		return c.Interpreter
	}
	return DefaultInterpreter
}

// Timeout returns the configured default time budget or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d >= time.Second {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured per-stream output cap, or 0 for
// unlimited.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// LogLevel returns the configured log level or the default.
func (c *Config) LogLevel() log.Level {
	switch strings.ToLower(c.RawLogLevel) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "info":
		return log.InfoLevel
	}
	return DefaultLogLevel
}

// LoadResult holds the parsed config and where it was found.
type LoadResult struct {
	Config *Config
	Path   string // path of the file read; empty when defaults are used
}

// Load reads the .scriptrunner file from dir or its closest ancestor that
// has one. If no file exists, a default Config is returned.
func Load(dir string) (*LoadResult, error) {
	path, err := findConfig(dir)
	if err != nil {
		return &LoadResult{Config: &Config{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// findConfig walks upward from dir looking for a .scriptrunner file.
func findConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found", FileName)
		}
		dir = parent
	}
}
