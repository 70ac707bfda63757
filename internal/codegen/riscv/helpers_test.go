package riscv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/config"
	"github.com/LeeLin2602/lin-compiler/internal/rvsim"
	"github.com/LeeLin2602/lin-compiler/internal/symbols"
	"github.com/LeeLin2602/lin-compiler/internal/types"
)

// Builders for annotated trees. Levels follow the analyzer: 0 for globals,
// 1 and deeper for everything declared inside a function or block.

func intVar(name string, level int) *symbols.Entry {
	return symbols.NewVariable(name, types.Integer, level)
}

func intParam(name string) *symbols.Entry {
	return symbols.NewParameter(name, types.Integer, 1)
}

func intConst(name string, level int, value int64) *symbols.Entry {
	return symbols.NewConstant(name, types.Integer, level, value)
}

func num(v int64) *ast.ConstantValue {
	return ast.NewIntLiteral(v)
}

func boolean(v bool) *ast.ConstantValue {
	return ast.NewBoolLiteral(v)
}

func ref(name string) *ast.VariableRef {
	return &ast.VariableRef{Name: name}
}

func bin(op ast.Operator, left, right ast.Expression) *ast.BinaryOp {
	return &ast.BinaryOp{Operator: op, Left: left, Right: right}
}

func unary(op ast.Operator, operand ast.Expression) *ast.UnaryOp {
	return &ast.UnaryOp{Operator: op, Operand: operand}
}

func call(name string, args ...ast.Expression) *ast.Invocation {
	return &ast.Invocation{Name: name, Args: args}
}

func printOf(e ast.Expression) *ast.Print {
	return &ast.Print{Target: e}
}

func assign(name string, e ast.Expression) *ast.Assignment {
	return &ast.Assignment{Target: ref(name), Value: e}
}

func block(scope *symbols.Table, stmts ...ast.Statement) *ast.CompoundStatement {
	return &ast.CompoundStatement{Scope: scope, Statements: stmts}
}

func function(name string, scope *symbols.Table, stmts ...ast.Statement) *ast.Function {
	return &ast.Function{Name: name, ReturnType: types.Integer, Scope: scope, Body: block(nil, stmts...)}
}

func program(globals *symbols.Table, functions []*ast.Function, body *ast.CompoundStatement) *ast.Program {
	if globals == nil {
		globals = symbols.NewTable()
	}
	return &ast.Program{Name: "test", FileName: "test.p", Scope: globals, Functions: functions, Body: body}
}

// mainOnly wraps statements into a program without globals or functions.
func mainOnly(stmts ...ast.Statement) *ast.Program {
	return program(nil, nil, block(nil, stmts...))
}

func generateText(t *testing.T, p *ast.Program) string {
	t.Helper()
	cg := &CodeGenerator{ABI: config.Default().ABI}
	out, err := cg.Generate(p)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	var buf bytes.Buffer
	if err := cg.Format(&buf, out); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	return buf.String()
}

// execute generates p, runs it in the simulator and checks that the stack
// pointer and frame pointer come back to where they started.
func execute(t *testing.T, p *ast.Program, input string) string {
	t.Helper()
	text := generateText(t, p)

	abi := config.Default().ABI
	var out bytes.Buffer
	result, err := rvsim.Run(text, rvsim.Options{
		Entry:       abi.Entry,
		PrintHelper: abi.PrintHelper,
		ReadHelper:  abi.ReadHelper,
		Input:       strings.NewReader(input),
		Output:      &out,
	})
	if err != nil {
		t.Fatalf("simulation error = %v\n%s", err, text)
	}
	if !result.StackBalanced {
		t.Errorf("stack not balanced after run\n%s", text)
	}
	return out.String()
}

func lines(values ...string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, "\n") + "\n"
}
