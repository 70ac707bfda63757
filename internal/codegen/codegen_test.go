package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/config"
	"github.com/LeeLin2602/lin-compiler/internal/symbols"
)

func TestTargetFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Target
		wantErr bool
	}{
		{"riscv32", TargetRISCV32, false},
		{"rv32", TargetRISCV32, false},
		{"x86_64", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TargetFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TargetFromName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("TargetFromName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		source, dir, ext string
		want             string
	}{
		{"test.p", ".", ".S", "test.S"},
		{"/tmp/src/fib.p", "out", ".S", filepath.Join("out", "fib.S")},
		{"noext", "", ".s", "noext.s"},
		{"archive.tar.json", "build", ".S", filepath.Join("build", "archive.tar.S")},
		{"", ".", ".S", "out.S"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := OutputPath(tt.source, tt.dir, tt.ext); got != tt.want {
				t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.source, tt.dir, tt.ext, got, tt.want)
			}
		})
	}
}

func TestCreateOutput(t *testing.T) {
	dir := t.TempDir()

	f, err := CreateOutput(filepath.Join(dir, "ok.S"))
	if err != nil {
		t.Fatalf("CreateOutput() error = %v", err)
	}
	f.Close()

	_, err = CreateOutput(filepath.Join(dir, "missing", "dir", "out.S"))
	if !errors.Is(err, ErrOutputTargetUnavailable) {
		t.Errorf("CreateOutput() error = %v, want %v", err, ErrOutputTargetUnavailable)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("CreateOutput() error = %v, want the underlying cause kept", err)
	}
}

func TestGenerate(t *testing.T) {
	program := &ast.Program{
		Name:     "hello",
		FileName: "hello.p",
		Scope:    symbols.NewTable(),
		Body: &ast.CompoundStatement{Statements: []ast.Statement{
			&ast.Print{Target: ast.NewIntLiteral(42)},
		}},
	}

	var out bytes.Buffer
	if err := Generate(&out, TargetRISCV32, program, Options{ABI: config.Default().ABI}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, want := range []string{`.file "hello.p"`, "main:", "li t0, 42", "jal ra, printInt"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	unresolved := &ast.Program{
		Scope: symbols.NewTable(),
		Body: &ast.CompoundStatement{Statements: []ast.Statement{
			&ast.Print{Target: &ast.VariableRef{Name: "nope"}},
		}},
	}

	var out bytes.Buffer
	err := Generate(&out, TargetRISCV32, unresolved, Options{ABI: config.Default().ABI})
	if !errors.Is(err, ErrUnresolvedIdentifier) {
		t.Errorf("Generate() error = %v, want %v", err, ErrUnresolvedIdentifier)
	}
	if out.Len() != 0 {
		t.Errorf("partial output written on error: %q", out.String())
	}

	if err := Generate(&out, Target(7), unresolved, Options{}); err == nil || IsFatal(err) {
		t.Errorf("Generate() with unknown target error = %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrUnresolvedIdentifier, true},
		{fmt.Errorf("wrapped: %w", ErrUnsupportedConstruct), true},
		{ErrOutputTargetUnavailable, true},
		{errors.New("other"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.want {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
