package riscv

import (
	"fmt"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/codegen/common"
	"github.com/LeeLin2602/lin-compiler/internal/types"
)

func (g *generator) generateStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.CompoundStatement:
		return g.generateCompound(s)
	case *ast.Print:
		return g.generatePrint(s)
	case *ast.Read:
		return g.generateRead(s)
	case *ast.Assignment:
		return g.generateAssignment(s)
	case *ast.If:
		return g.generateIf(s)
	case *ast.While:
		return g.generateWhile(s)
	case *ast.For:
		return g.generateFor(s)
	case *ast.Return:
		return g.generateReturn(s)
	case *ast.Invocation:
		// Called for its side effects; drop the result.
		if err := g.generateInvocation(s); err != nil {
			return err
		}
		g.discard()
		return nil
	default:
		return common.Unsupported(stmt.GetLocation(), "no lowering for statement %T", stmt)
	}
}

func (g *generator) generateCompound(block *ast.CompoundStatement) error {
	g.scopes.Enter(block.Scope)
	defer g.scopes.Exit(block.Scope)

	if err := g.installFrame(block.Scope, block.Loc); err != nil {
		return err
	}
	for _, stmt := range block.Statements {
		if err := g.generateStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) generatePrint(p *ast.Print) error {
	g.emit(asm.Comment("print"))
	if err := g.generateExpression(p.Target); err != nil {
		return err
	}
	g.pop(asm.A0)
	g.emit(asm.Op2("jal", asm.RA, asm.Ref(g.abi.PrintHelper)))
	return nil
}

func (g *generator) generateRead(r *ast.Read) error {
	entry, err := g.resolve(r.Target)
	if err != nil {
		return err
	}
	g.emit(asm.Comment(fmt.Sprintf("read %s", r.Target.Name)))
	g.loadAddress(asm.T0, entry)
	g.push(asm.T0)
	g.emit(asm.Op2("jal", asm.RA, asm.Ref(g.abi.ReadHelper)))
	g.pop(asm.T0)
	g.emit(asm.Op2("sw", asm.A0, asm.T0.AsDeref()))
	return nil
}

func (g *generator) generateAssignment(a *ast.Assignment) error {
	entry, err := g.resolve(a.Target)
	if err != nil {
		return err
	}
	g.emit(asm.Comment(fmt.Sprintf("assign %s", a.Target.Name)))
	g.loadAddress(asm.T0, entry)
	g.push(asm.T0)
	if err := g.generateExpression(a.Value); err != nil {
		return err
	}
	g.pop(asm.T1) // value
	g.pop(asm.T0) // address
	g.emit(asm.Op2("sw", asm.T1, asm.T0.AsDeref()))
	return nil
}

func (g *generator) generateIf(s *ast.If) error {
	elseLabel := g.newLabel()
	doneLabel := g.newLabel()

	if err := g.generateExpression(s.Condition); err != nil {
		return err
	}
	g.pop(asm.T0)
	g.emit(asm.Op2("beqz", asm.T0, asm.Ref(elseLabel)))

	if s.Then != nil {
		if err := g.generateCompound(s.Then); err != nil {
			return err
		}
	}
	g.emit(
		asm.Op1("j", asm.Ref(doneLabel)),
		asm.Label(elseLabel))

	if s.Else != nil {
		if err := g.generateCompound(s.Else); err != nil {
			return err
		}
	}
	g.emit(asm.Label(doneLabel))
	return nil
}

func (g *generator) generateWhile(s *ast.While) error {
	bodyLabel := g.newLabel()
	doneLabel := g.newLabel()

	g.emit(asm.Label(bodyLabel))
	if err := g.generateExpression(s.Condition); err != nil {
		return err
	}
	g.pop(asm.T0)
	g.emit(asm.Op2("beqz", asm.T0, asm.Ref(doneLabel)))

	if s.Body != nil {
		if err := g.generateCompound(s.Body); err != nil {
			return err
		}
	}
	g.emit(
		asm.Op1("j", asm.Ref(bodyLabel)),
		asm.Label(doneLabel))
	return nil
}

func (g *generator) generateFor(s *ast.For) error {
	lower, err := loopBound(s.Lower, "lower")
	if err != nil {
		return err
	}
	upper, err := loopBound(s.Upper, "upper")
	if err != nil {
		return err
	}
	if lower > upper {
		return common.Unsupported(s.Loc, "for-loop bounds [%d, %d) are not ascending", lower, upper)
	}

	g.scopes.Enter(s.Scope)
	defer g.scopes.Exit(s.Scope)

	if err := g.installFrame(s.Scope, s.Loc); err != nil {
		return err
	}
	loopVar, err := g.resolve(&ast.VariableRef{Loc: s.Loc, Name: s.Var})
	if err != nil {
		return err
	}

	bodyLabel := g.newLabel()
	doneLabel := g.newLabel()

	g.emit(asm.Comment(fmt.Sprintf("for %s in [%d, %d)", s.Var, lower, upper)))
	g.loadAddress(asm.T0, loopVar)
	g.emit(
		asm.Op2("li", asm.T1, asm.Imm(lower)),
		asm.Op2("sw", asm.T1, asm.T0.AsDeref()),
		asm.Label(bodyLabel))

	g.loadAddress(asm.T0, loopVar)
	g.emit(
		asm.Op2("lw", asm.T0, asm.T0.AsDeref()),
		asm.Op2("li", asm.T1, asm.Imm(upper)),
		asm.Op3("beq", asm.T0, asm.T1, asm.Ref(doneLabel)))

	if s.Body != nil {
		if err := g.generateCompound(s.Body); err != nil {
			return err
		}
	}

	g.loadAddress(asm.T0, loopVar)
	g.emit(
		asm.Op2("lw", asm.T1, asm.T0.AsDeref()),
		asm.Op3("addi", asm.T1, asm.T1, asm.Imm(1)),
		asm.Op2("sw", asm.T1, asm.T0.AsDeref()),
		asm.Op1("j", asm.Ref(bodyLabel)),
		asm.Label(doneLabel))
	return nil
}

func loopBound(expr ast.Expression, which string) (int, error) {
	c, ok := expr.(*ast.ConstantValue)
	if !ok || c == nil {
		var loc ast.Location
		if expr != nil {
			loc = expr.GetLocation()
		}
		return 0, common.Unsupported(loc, "for-loop %s bound must be an integer constant", which)
	}
	if c.Type != types.Integer {
		return 0, common.Unsupported(c.Loc, "for-loop %s bound has type %s", which, c.Type)
	}
	return immediate(c.Loc, c.Value)
}

func (g *generator) generateReturn(r *ast.Return) error {
	g.emit(asm.Comment("return"))
	if err := g.generateExpression(r.Value); err != nil {
		return err
	}
	g.pop(asm.A0)
	g.emit(asm.Op1("j", asm.Ref(g.exitLabel())))
	return nil
}
