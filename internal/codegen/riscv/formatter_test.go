package riscv

import (
	"errors"
	"strings"
	"testing"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/config"
	"github.com/LeeLin2602/lin-compiler/internal/symbols"
)

func TestFormatProgram(t *testing.T) {
	p := asm.Program{
		File:      `dir/"quoted".p`,
		Globals:   []asm.GlobalVariable{{Label: "x", Size: 4, Align: 4}},
		Constants: []asm.GlobalConstant{{Label: "k", Value: -5}},
		Functions: []asm.Function{{
			Name:   "main",
			Global: true,
			Lines: []asm.Line{
				asm.Comment("body"),
				asm.Op2("li", asm.T0, asm.Imm(3)),
				asm.Op2("sw", asm.T0, asm.DerefWithOffset(asm.S0, -12)),
				asm.Label(".L1"),
				{Op: "jr", Arity: 1, Arg1: asm.RA, Comment: "done"},
			},
		}},
	}

	var sb strings.Builder
	if err := formatProgram(&sb, p); err != nil {
		t.Fatalf("formatProgram() error = %v", err)
	}

	want := strings.Join([]string{
		`    .file "dir/\"quoted\".p"`,
		"    .option nopic",
		".comm x, 4, 4",
		".section    .rodata",
		"    .align 2",
		"    .globl k",
		"    .type k, @object",
		"k:",
		"    .word -5",
		".section    .text",
		"    .align 2",
		"    .globl main",
		"    .type main, @function",
		"main:",
		"// body",
		"    li t0, 3",
		"    sw t0, -12(s0)",
		".L1:",
		"    jr ra  // done",
		"",
	}, "\n")
	if got := sb.String(); got != want {
		t.Errorf("formatProgram() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatLocalFunction(t *testing.T) {
	p := asm.Program{Functions: []asm.Function{{Name: "helper", Lines: []asm.Line{asm.Op0("ret")}}}}

	var sb strings.Builder
	if err := formatProgram(&sb, p); err != nil {
		t.Fatalf("formatProgram() error = %v", err)
	}
	if strings.Contains(sb.String(), ".globl helper") {
		t.Errorf("non-entry function exported:\n%s", sb.String())
	}
	if !strings.Contains(sb.String(), "helper:\n    ret\n") {
		t.Errorf("unexpected output:\n%s", sb.String())
	}
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestFormatWriteError(t *testing.T) {
	out, err := Generate(mainOnly(printOf(num(1))), config.Default().ABI, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if err := formatProgram(failingWriter{}, out); !errors.Is(err, errWrite) {
		t.Errorf("formatProgram() error = %v, want %v", err, errWrite)
	}
}

func TestGeneratedLayout(t *testing.T) {
	globals := symbols.NewTable(intVar("x", 0), intConst("limit", 0, 10))
	text := generateText(t, program(globals, nil, block(nil, printOf(ref("x")))))

	for _, want := range []string{
		".comm x, 4, 4",
		"limit:\n    .word 10",
		"    .globl main",
		"    la t0, x",
		"    jal ra, printInt",
		".Lmain_exit:",
		"    lw ra, 124(sp)",
		"    lw s0, 120(sp)",
		"    addi sp, sp, 128",
		"    jr ra",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "#") {
		t.Errorf("output contains '#', which the C preprocessor treats as a directive:\n%s", text)
	}
}

func TestRuntime(t *testing.T) {
	for _, want := range []string{"printInt:", "readInt:", "call printf", "call scanf"} {
		if !strings.Contains(Runtime, want) {
			t.Errorf("runtime missing %q", want)
		}
	}
}

func TestRuntimeFor(t *testing.T) {
	abi := config.Default().ABI
	if got := RuntimeFor(abi); got != Runtime {
		t.Errorf("default helper names changed the runtime")
	}

	abi.PrintHelper = "emit_int"
	abi.ReadHelper = "fetch_int"
	got := RuntimeFor(abi)
	for _, want := range []string{"emit_int:", ".globl emit_int", "fetch_int:", ".globl fetch_int"} {
		if !strings.Contains(got, want) {
			t.Errorf("runtime missing %q", want)
		}
	}
	if strings.Contains(got, "printInt") || strings.Contains(got, "readInt") {
		t.Errorf("runtime still uses default names:\n%s", got)
	}
}
