package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do"

	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/codegen"
	"github.com/LeeLin2602/lin-compiler/internal/config"
)

// newContainer wires the services every subcommand shares.
func newContainer(cfgPath string, verbose bool, stderr io.Writer) *do.Injector {
	injector := do.New()

	do.Provide(injector, func(i *do.Injector) (*config.Config, error) {
		return config.Load(cfgPath)
	})

	do.Provide(injector, func(i *do.Injector) (*slog.Logger, error) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})), nil
	})

	do.Provide(injector, func(i *do.Injector) (*compiler, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		logger, err := do.Invoke[*slog.Logger](i)
		if err != nil {
			return nil, err
		}
		return &compiler{cfg: cfg, log: logger}, nil
	})

	return injector
}

// compilerFor builds the container from the global flags and returns its compiler.
func compilerFor(stderr io.Writer) (*compiler, error) {
	return do.Invoke[*compiler](newContainer(configPath, verbose, stderr))
}

// compiler runs the stages shared by gen, run, build and verify.
type compiler struct {
	cfg *config.Config
	log *slog.Logger
}

func (c *compiler) load(path string) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening input file: %w", err)
	}
	defer f.Close()

	program, err := ast.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	if program.FileName == "" {
		program.FileName = filepath.Base(path)
	}
	c.log.Debug("loaded program", "path", path, "name", program.Name, "functions", len(program.Functions))
	return program, nil
}

func (c *compiler) generate(out io.Writer, program *ast.Program) error {
	return codegen.Generate(out, codegen.TargetRISCV32, program, codegen.Options{
		ABI:    c.cfg.ABI,
		Logger: c.log,
	})
}
