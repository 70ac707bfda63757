package riscv

import (
	"fmt"
	"io"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/util"
)

// errWriter remembers the first write error so the formatting code can stay linear.
type errWriter struct {
	out io.Writer
	err error
}

func (w *errWriter) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format, args...)
}

func formatProgram(out io.Writer, p asm.Program) error {
	w := &errWriter{out: out}

	w.printf("    .file \"%s\"\n", util.EscapeString(p.File))
	w.printf("    .option nopic\n")

	formatGlobalVariables(w, p.Globals)
	formatGlobalConstants(w, p.Constants)

	for _, fn := range p.Functions {
		formatFunction(w, fn)
	}
	return w.err
}

func formatGlobalVariables(w *errWriter, globals []asm.GlobalVariable) {
	for _, g := range globals {
		w.printf(".comm %s, %d, %d\n", g.Label, g.Size, g.Align)
	}
}

func formatGlobalConstants(w *errWriter, constants []asm.GlobalConstant) {
	for _, c := range constants {
		w.printf(".section    .rodata\n")
		w.printf("    .align 2\n")
		w.printf("    .globl %s\n", c.Label)
		w.printf("    .type %s, @object\n", c.Label)
		w.printf("%s:\n", c.Label)
		w.printf("    .word %d\n", c.Value)
	}
}

func formatFunction(w *errWriter, fn asm.Function) {
	w.printf(".section    .text\n")
	w.printf("    .align 2\n")
	if fn.Global {
		w.printf("    .globl %s\n", fn.Name)
	}
	w.printf("    .type %s, @function\n", fn.Name)
	w.printf("%s:\n", fn.Name)

	for _, line := range fn.Lines {
		formatLine(w, line)
	}
}

func formatLine(w *errWriter, line asm.Line) {
	if line.Label != "" {
		w.printf("%s:", line.Label)
	} else if line.Op != "" {
		w.printf("    %s", line.Op)

		if line.Arity >= 1 {
			w.printf(" %s", argToString(line.Arg1))
		}
		if line.Arity >= 2 {
			w.printf(", %s", argToString(line.Arg2))
		}
		if line.Arity >= 3 {
			w.printf(", %s", argToString(line.Arg3))
		}
	}

	if line.Comment != "" {
		if line.Label == "" && line.Op == "" {
			w.printf("// %s", line.Comment)
		} else {
			w.printf("  // %s", line.Comment)
		}
	}

	w.printf("\n")
}

func argToString(arg asm.Arg) string {
	if arg.Deref && arg.Reg == "" {
		panic(fmt.Errorf("invalid arg %#v. dereferencing only supported for registers", arg))
	}

	switch {
	case arg.Deref:
		return fmt.Sprintf("%d(%s)", arg.Offset, arg.Reg)
	case arg.Reg != "":
		return arg.Reg
	case arg.Label != "":
		return arg.Label
	case arg.Imm != nil:
		return fmt.Sprintf("%d", *arg.Imm)
	}
	panic(fmt.Errorf("invalid arg %#v", arg))
}
