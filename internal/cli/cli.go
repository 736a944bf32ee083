package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/AppKaki/blockly-ulisp/internal/gen"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Config is what the blockgen command was asked to do.
type Config struct {
	WorkspacePath string
	OutputPath    string
	EnvFile       string
	LogLevel      string
	ShowNames     bool

	indent          string
	oneBased        bool
	statementPrefix string
	statementSuffix string
	loopTrap        string
	set             map[string]bool
}

// GeneratorOptions overlays the generator flags given on the command line
// onto base.
func (c *Config) GeneratorOptions(base gen.Options) gen.Options {
	if c.set["indent"] {
		base.Indent = c.indent
	}
	if c.set["one-based"] {
		base.OneBasedIndex = c.oneBased
	}
	if c.set["statement-prefix"] {
		base.StatementPrefix = c.statementPrefix
	}
	if c.set["statement-suffix"] {
		base.StatementSuffix = c.statementSuffix
	}
	if c.set["loop-trap"] {
		base.InfiniteLoopTrap = c.loopTrap
	}
	return base
}

// LogLevelSet reports whether -log-level was given.
func (c *Config) LogLevelSet() bool {
	return c.set["log-level"]
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("blockgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
blockgen - turns a block workspace into program text.

Usage:
  blockgen [options] WORKSPACE_FILE

Arguments:
  WORKSPACE_FILE
    A .json or .hcl workspace document.

Options:
`)
		flagSet.PrintDefaults()
	}

	cfg := &Config{set: make(map[string]bool)}
	flagSet.StringVar(&cfg.OutputPath, "o", "", "Write the program to this file instead of stdout.")
	flagSet.StringVar(&cfg.indent, "indent", "    ", "One indentation level.")
	flagSet.BoolVar(&cfg.oneBased, "one-based", true, "Count list and text positions from 1.")
	flagSet.StringVar(&cfg.statementPrefix, "statement-prefix", "", "Code injected before every statement; %1 is the block id.")
	flagSet.StringVar(&cfg.statementSuffix, "statement-suffix", "", "Code injected after every statement; %1 is the block id.")
	flagSet.StringVar(&cfg.loopTrap, "loop-trap", "", "Code injected at the top of every loop body; %1 is the block id.")
	flagSet.BoolVar(&cfg.ShowNames, "names", false, "Also print the name table to stderr.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&cfg.EnvFile, "env", "", "Read defaults from this .env file.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	flagSet.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })

	switch flagSet.NArg() {
	case 0:
		flagSet.Usage()
		return nil, true, nil
	case 1:
		cfg.WorkspacePath = flagSet.Arg(0)
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected one workspace file, got %d arguments", flagSet.NArg())}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if cfg.set["indent"] && strings.Trim(cfg.indent, " \t") != "" {
		return nil, false, &ExitError{Code: 2, Message: "invalid indent: must be spaces or tabs"}
	}
	return cfg, false, nil
}
