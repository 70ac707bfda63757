package ast

import (
	"fmt"
	"strings"

	"github.com/LeeLin2602/lin-compiler/internal/symbols"
	"github.com/LeeLin2602/lin-compiler/internal/types"
)

type Location struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

type AstNode interface {
	fmt.Stringer
	GetLocation() Location
}

// Program is the root. Scope holds the global (level 0) entries.
type Program struct {
	Loc       Location
	Name      string
	FileName  string // path of the source file the tree was built from
	Scope     *symbols.Table
	Decls     []*Decl
	Functions []*Function
	Body      *CompoundStatement
}

func (p *Program) GetLocation() Location {
	return p.Loc
}

func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(program %s", p.Name))
	for _, decl := range p.Decls {
		sb.WriteString(" ")
		sb.WriteString(decl.String())
	}
	for _, fn := range p.Functions {
		sb.WriteString(" ")
		sb.WriteString(fn.String())
	}
	if p.Body != nil {
		sb.WriteString(" ")
		sb.WriteString(p.Body.String())
	}
	sb.WriteString(")")
	return sb.String()
}

type Decl struct {
	Loc       Location
	Variables []*Variable
}

func (d *Decl) GetLocation() Location {
	return d.Loc
}

func (d *Decl) String() string {
	var sb strings.Builder
	sb.WriteString("(decl")
	for _, v := range d.Variables {
		sb.WriteString(" ")
		sb.WriteString(v.String())
	}
	sb.WriteString(")")
	return sb.String()
}

type Variable struct {
	Loc      Location
	Name     string
	Type     types.Type
	Constant *ConstantValue // set for constant declarations
}

func (v *Variable) GetLocation() Location {
	return v.Loc
}

func (v *Variable) String() string {
	if v.Constant != nil {
		return fmt.Sprintf("(%s %s %s)", v.Name, v.Type, v.Constant)
	}
	return fmt.Sprintf("(%s %s)", v.Name, v.Type)
}

type Function struct {
	Loc        Location
	Name       string
	Params     []*Decl
	ReturnType types.Type
	Scope      *symbols.Table
	Body       *CompoundStatement
}

func (f *Function) GetLocation() Location {
	return f.Loc
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(func %s (", f.Name))
	for i, param := range f.Params {
		sb.WriteString(param.String())
		if i != len(f.Params)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString(") ")
	if f.ReturnType == nil {
		sb.WriteString("void ")
	} else {
		sb.WriteString(f.ReturnType.String() + " ")
	}
	if f.Body != nil {
		sb.WriteString(f.Body.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Statement types.

type Statement interface {
	AstNode
	isStatement()
}

type CompoundStatement struct {
	Loc        Location
	Scope      *symbols.Table // nil when the block declares nothing
	Decls      []*Decl
	Statements []Statement
}

func (c *CompoundStatement) GetLocation() Location {
	return c.Loc
}

func (c *CompoundStatement) isStatement() {}

func (c *CompoundStatement) String() string {
	var sb strings.Builder
	sb.WriteString("(block")
	for _, decl := range c.Decls {
		sb.WriteString(" ")
		sb.WriteString(decl.String())
	}
	for _, stmt := range c.Statements {
		sb.WriteString(" ")
		sb.WriteString(stmt.String())
	}
	sb.WriteString(")")
	return sb.String()
}

type Print struct {
	Loc    Location
	Target Expression
}

func (p *Print) GetLocation() Location {
	return p.Loc
}

func (p *Print) isStatement() {}

func (p *Print) String() string {
	return fmt.Sprintf("(print %s)", p.Target.String())
}

type Read struct {
	Loc    Location
	Target *VariableRef
}

func (r *Read) GetLocation() Location {
	return r.Loc
}

func (r *Read) isStatement() {}

func (r *Read) String() string {
	return fmt.Sprintf("(read %s)", r.Target.String())
}

type Assignment struct {
	Loc    Location
	Target *VariableRef
	Value  Expression
}

func (a *Assignment) GetLocation() Location {
	return a.Loc
}

func (a *Assignment) isStatement() {}

func (a *Assignment) String() string {
	return fmt.Sprintf("(:= %s %s)", a.Target.String(), a.Value.String())
}

type If struct {
	Loc       Location
	Condition Expression
	Then      *CompoundStatement
	Else      *CompoundStatement // optional
}

func (i *If) GetLocation() Location {
	return i.Loc
}

func (i *If) isStatement() {}

func (i *If) String() string {
	if i.Else == nil {
		return fmt.Sprintf("(if %s %s)", i.Condition.String(), i.Then.String())
	}
	return fmt.Sprintf("(if %s %s %s)", i.Condition.String(), i.Then.String(), i.Else.String())
}

type While struct {
	Loc       Location
	Condition Expression
	Body      *CompoundStatement
}

func (w *While) GetLocation() Location {
	return w.Loc
}

func (w *While) isStatement() {}

func (w *While) String() string {
	return fmt.Sprintf("(while %s %s)", w.Condition.String(), w.Body.String())
}

// For iterates Var over [Lower, Upper). Var is declared in Scope.
type For struct {
	Loc   Location
	Scope *symbols.Table
	Var   string
	Lower Expression
	Upper Expression
	Body  *CompoundStatement
}

func (f *For) GetLocation() Location {
	return f.Loc
}

func (f *For) isStatement() {}

func (f *For) String() string {
	return fmt.Sprintf("(for %s %s %s %s)", f.Var, f.Lower.String(), f.Upper.String(), f.Body.String())
}

type Return struct {
	Loc   Location
	Value Expression
}

func (r *Return) GetLocation() Location {
	return r.Loc
}

func (r *Return) isStatement() {}

func (r *Return) String() string {
	return fmt.Sprintf("(return %s)", r.Value.String())
}

// Expression types.

type Expression interface {
	AstNode
	isExpression()
}

// ConstantValue is an integer or boolean literal. Booleans are stored as 0/1.
type ConstantValue struct {
	Loc   Location
	Type  types.Type
	Value int64
}

func (c *ConstantValue) GetLocation() Location {
	return c.Loc
}

func (c *ConstantValue) isExpression() {}

func (c *ConstantValue) String() string {
	if c.Type == types.Boolean {
		return fmt.Sprintf("%v", c.Value != 0)
	}
	return fmt.Sprintf("%d", c.Value)
}

// Helper functions for creating ConstantValue literals
func NewIntLiteral(value int64) *ConstantValue {
	return &ConstantValue{Type: types.Integer, Value: value}
}

func NewBoolLiteral(value bool) *ConstantValue {
	lit := &ConstantValue{Type: types.Boolean}
	if value {
		lit.Value = 1
	}
	return lit
}

type VariableRef struct {
	Loc  Location
	Name string
}

func (v *VariableRef) GetLocation() Location {
	return v.Loc
}

func (v *VariableRef) isExpression() {}

func (v *VariableRef) String() string {
	return v.Name
}

type BinaryOp struct {
	Loc      Location
	Operator Operator
	Left     Expression
	Right    Expression
}

func (b *BinaryOp) GetLocation() Location {
	return b.Loc
}

func (b *BinaryOp) isExpression() {}

func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Operator, b.Left.String(), b.Right.String())
}

type UnaryOp struct {
	Loc      Location
	Operator Operator
	Operand  Expression
}

func (u *UnaryOp) GetLocation() Location {
	return u.Loc
}

func (u *UnaryOp) isExpression() {}

func (u *UnaryOp) String() string {
	return fmt.Sprintf("(%s %s)", u.Operator, u.Operand.String())
}

// Invocation is a function call. It is both an expression and, when its
// result is discarded, a statement.
type Invocation struct {
	Loc  Location
	Name string
	Args []Expression
}

func (i *Invocation) GetLocation() Location {
	return i.Loc
}

func (i *Invocation) isExpression() {}
func (i *Invocation) isStatement()  {}

func (i *Invocation) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(%s", i.Name))
	for _, arg := range i.Args {
		sb.WriteString(" ")
		sb.WriteString(arg.String())
	}
	sb.WriteString(")")
	return sb.String()
}
