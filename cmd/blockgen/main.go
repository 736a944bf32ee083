package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	ulisp "github.com/AppKaki/blockly-ulisp"
	"github.com/AppKaki/blockly-ulisp/internal/cli"
	"github.com/AppKaki/blockly-ulisp/internal/gen"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(outW, errW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	appConfig, err := ulisp.LoadConfig(cfg.EnvFile)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}
	level := appConfig.LogLevel
	if cfg.LogLevelSet() {
		level = cfg.LogLevel
	}
	logger := ulisp.NewLogger(errW, level)

	ws, err := workspace.LoadFile(cfg.WorkspacePath)
	if err != nil {
		return err
	}
	if err := workspace.Validate(ws); err != nil {
		return fmt.Errorf("invalid workspace %s: %w", cfg.WorkspacePath, err)
	}

	generator := gen.NewGenerator(cfg.GeneratorOptions(appConfig.GeneratorOptions()), logger)
	res, err := generator.Generate(ws)
	if err != nil {
		return err
	}
	logger.Debug().Str("workspace", cfg.WorkspacePath).Int("bytes", len(res.Code)).Msg("Program generated")

	if cfg.ShowNames {
		for _, n := range res.Names {
			fmt.Fprintf(errW, "%-20s %-40s %s\n", n.Category, n.Logical, n.Text)
		}
	}

	if cfg.OutputPath == "" {
		_, err = fmt.Fprintln(outW, res.Code)
		return err
	}
	if err := os.WriteFile(cfg.OutputPath, []byte(res.Code+"\n"), 0o644); err != nil {
		return fmt.Errorf("write program: %w", err)
	}
	return nil
}
