package riscv

import (
	_ "embed"
	"io"
	"log/slog"
	"strings"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/config"
)

// Runtime holds printInt and readInt for linking with the C library.
//
//go:embed runtime.asm
var Runtime string

// RuntimeFor renames the runtime helpers to the names abi calls them by.
func RuntimeFor(abi config.ABI) string {
	return strings.NewReplacer(
		"printInt", abi.PrintHelper,
		"readInt", abi.ReadHelper,
	).Replace(Runtime)
}

type CodeGenerator struct {
	ABI    config.ABI
	Logger *slog.Logger
}

func (cg *CodeGenerator) Generate(p *ast.Program) (asm.Program, error) {
	return Generate(p, cg.ABI, cg.Logger)
}

func (cg *CodeGenerator) Format(out io.Writer, p asm.Program) error {
	return formatProgram(out, p)
}
