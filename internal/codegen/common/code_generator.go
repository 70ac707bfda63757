package common

import (
	"io"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/ast"
)

type CodeGenerator interface {
	Generate(*ast.Program) (asm.Program, error)
	Format(io.Writer, asm.Program) error
}
