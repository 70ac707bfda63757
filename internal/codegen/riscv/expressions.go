package riscv

import (
	"fmt"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/codegen/common"
	"github.com/LeeLin2602/lin-compiler/internal/types"
)

// Every expression leaves exactly one word on the runtime stack and pops
// everything it pushed on the way.

func (g *generator) push(reg asm.Arg) {
	g.emit(
		asm.Op3("addi", asm.SP, asm.SP, asm.Imm(-WORD_SIZE)),
		asm.Op2("sw", reg, asm.SP.AsDeref()))
}

func (g *generator) pop(reg asm.Arg) {
	g.emit(
		asm.Op2("lw", reg, asm.SP.AsDeref()),
		asm.Op3("addi", asm.SP, asm.SP, asm.Imm(WORD_SIZE)))
}

// discard drops the top of the stack.
func (g *generator) discard() {
	g.emit(asm.Op3("addi", asm.SP, asm.SP, asm.Imm(WORD_SIZE)))
}

func (g *generator) generateExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.ConstantValue:
		return g.generateConstant(e)
	case *ast.VariableRef:
		return g.generateVariableRef(e)
	case *ast.BinaryOp:
		return g.generateBinaryOp(e)
	case *ast.UnaryOp:
		return g.generateUnaryOp(e)
	case *ast.Invocation:
		return g.generateInvocation(e)
	case nil:
		return common.Unsupported(ast.Location{}, "missing expression")
	default:
		return common.Unsupported(expr.GetLocation(), "no lowering for expression %T", expr)
	}
}

func (g *generator) generateConstant(c *ast.ConstantValue) error {
	if !types.IsScalar(c.Type) {
		return common.Unsupported(c.Loc, "constant of type %s", c.Type)
	}
	value, err := immediate(c.Loc, c.Value)
	if err != nil {
		return err
	}
	g.emit(asm.Op2("li", asm.T0, asm.Imm(value)))
	g.push(asm.T0)
	return nil
}

func (g *generator) generateVariableRef(ref *ast.VariableRef) error {
	entry, err := g.resolve(ref)
	if err != nil {
		return err
	}
	g.emit(asm.Comment(fmt.Sprintf("load %s", ref.Name)))
	g.loadAddress(asm.T0, entry)
	g.emit(asm.Op2("lw", asm.T0, asm.T0.AsDeref()))
	g.push(asm.T0)
	return nil
}

func (g *generator) generateBinaryOp(b *ast.BinaryOp) error {
	if err := g.generateExpression(b.Left); err != nil {
		return err
	}
	if err := g.generateExpression(b.Right); err != nil {
		return err
	}

	// The right operand was pushed last, so it comes off first.
	g.pop(asm.T1)
	g.pop(asm.T0)

	switch b.Operator {
	case ast.OpPlus:
		g.emit(asm.Op3("add", asm.T0, asm.T0, asm.T1))
	case ast.OpMinus:
		g.emit(asm.Op3("sub", asm.T0, asm.T0, asm.T1))
	case ast.OpMultiply:
		g.emit(asm.Op3("mul", asm.T0, asm.T0, asm.T1))
	case ast.OpDivide:
		g.emit(asm.Op3("div", asm.T0, asm.T0, asm.T1))
	case ast.OpMod:
		g.emit(asm.Op3("rem", asm.T0, asm.T0, asm.T1))
	case ast.OpAnd:
		g.emit(
			asm.Op2("snez", asm.T0, asm.T0),
			asm.Op2("snez", asm.T1, asm.T1),
			asm.Op3("and", asm.T0, asm.T0, asm.T1))
	case ast.OpOr:
		g.emit(
			asm.Op3("or", asm.T0, asm.T0, asm.T1),
			asm.Op2("snez", asm.T0, asm.T0))
	default:
		if !b.Operator.IsRelational() {
			return common.Unsupported(b.Loc, "binary operator %s", b.Operator)
		}
		g.generateComparison(b.Operator)
	}

	g.push(asm.T0)
	return nil
}

// generateComparison turns t0 - t1 into 0 or 1 without branching.
func (g *generator) generateComparison(op ast.Operator) {
	g.emit(asm.Op3("sub", asm.T0, asm.T0, asm.T1))
	switch op {
	case ast.OpEqual:
		g.emit(asm.Op2("seqz", asm.T0, asm.T0))
	case ast.OpNotEqual:
		g.emit(asm.Op2("snez", asm.T0, asm.T0))
	case ast.OpLess:
		g.emit(asm.Op2("sltz", asm.T0, asm.T0))
	case ast.OpGreater:
		g.emit(asm.Op2("sgtz", asm.T0, asm.T0))
	case ast.OpLessOrEqual:
		g.emit(
			asm.Op2("sgtz", asm.T0, asm.T0),
			asm.Op3("xori", asm.T0, asm.T0, asm.Imm(1)))
	case ast.OpGreaterOrEqual:
		g.emit(
			asm.Op2("sltz", asm.T0, asm.T0),
			asm.Op3("xori", asm.T0, asm.T0, asm.Imm(1)))
	}
}

func (g *generator) generateUnaryOp(u *ast.UnaryOp) error {
	if err := g.generateExpression(u.Operand); err != nil {
		return err
	}
	g.pop(asm.T0)

	switch u.Operator {
	case ast.OpNeg, ast.OpMinus:
		g.emit(asm.Op2("neg", asm.T0, asm.T0))
	case ast.OpNot:
		g.emit(asm.Op2("seqz", asm.T0, asm.T0))
	default:
		return common.Unsupported(u.Loc, "unary operator %s", u.Operator)
	}

	g.push(asm.T0)
	return nil
}

func (g *generator) generateInvocation(call *ast.Invocation) error {
	if len(call.Args) > g.abi.MaxArgs() {
		return common.Unsupported(call.Loc, "call to %s with %d arguments, at most %d supported", call.Name, len(call.Args), g.abi.MaxArgs())
	}

	for i, arg := range call.Args {
		g.emit(asm.Comment(fmt.Sprintf("argument %d of %s", i, call.Name)))
		if err := g.generateExpression(arg); err != nil {
			return err
		}
	}
	for i := len(call.Args) - 1; i >= 0; i-- {
		g.pop(asm.Reg(g.abi.ArgRegister(i)))
	}

	g.emit(asm.Op2("jal", asm.RA, asm.Ref(call.Name)))
	g.push(asm.A0)
	return nil
}
