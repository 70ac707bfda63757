package codegen

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/codegen/common"
	"github.com/LeeLin2602/lin-compiler/internal/codegen/riscv"
	"github.com/LeeLin2602/lin-compiler/internal/config"
)

type Target int

const (
	TargetRISCV32 Target = iota
)

func TargetFromName(name string) (Target, error) {
	switch name {
	case "riscv32", "rv32":
		return TargetRISCV32, nil
	}
	return 0, fmt.Errorf("unknown target: %s", name)
}

type Options struct {
	ABI    config.ABI
	Logger *slog.Logger
}

// Generate lowers program and writes the whole assembly text to out.
func Generate(out io.Writer, target Target, program *ast.Program, opts Options) error {
	var cg common.CodeGenerator
	switch target {
	case TargetRISCV32:
		cg = &riscv.CodeGenerator{ABI: opts.ABI, Logger: opts.Logger}
	default:
		return fmt.Errorf("unknown target: %v", target)
	}

	asmProgram, err := cg.Generate(program)
	if err != nil {
		return err
	}

	if err := cg.Format(out, asmProgram); err != nil {
		return fmt.Errorf("writing assembly: %w", err)
	}
	return nil
}

// OutputPath derives the assembly file name from the source file's base name.
func OutputPath(sourceFile, dir, extension string) string {
	if dir == "" {
		dir = "."
	}
	base := filepath.Base(sourceFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "out"
	}
	return filepath.Join(dir, base+extension)
}

// CreateOutput opens the destination before any code is generated.
func CreateOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrOutputTargetUnavailable, path, err)
	}
	return f, nil
}

// Re-exported so callers need not import common.
var (
	ErrUnresolvedIdentifier    = common.ErrUnresolvedIdentifier
	ErrUnsupportedConstruct    = common.ErrUnsupportedConstruct
	ErrOutputTargetUnavailable = common.ErrOutputTargetUnavailable
)

// IsFatal reports whether err is one of the generator's error kinds.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnresolvedIdentifier) ||
		errors.Is(err, ErrUnsupportedConstruct) ||
		errors.Is(err, ErrOutputTargetUnavailable)
}
