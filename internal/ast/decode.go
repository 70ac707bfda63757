package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/LeeLin2602/lin-compiler/internal/symbols"
	"github.com/LeeLin2602/lin-compiler/internal/types"
)

// The front end hands over the annotated tree as JSON. Every node is an object
// with a "kind" discriminator; scopes are arrays of symbol entries in
// declaration order.

type rawEntry struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Type  string `json:"type"`
	Level int    `json:"level"`
	Value *int64 `json:"value,omitempty"`
}

type rawNode struct {
	Kind string   `json:"kind"`
	Loc  Location `json:"loc"`

	Name     string          `json:"name"`
	File     string          `json:"file"`
	Type     string          `json:"type"`
	Op       string          `json:"op"`
	Var      string          `json:"var"`
	Value    json.RawMessage `json:"value"`
	Scope    []rawEntry      `json:"scope"`
	HasScope bool            `json:"-"`

	Decls      []json.RawMessage `json:"decls"`
	Functions  []json.RawMessage `json:"functions"`
	Variables  []json.RawMessage `json:"variables"`
	Params     []json.RawMessage `json:"params"`
	Statements []json.RawMessage `json:"statements"`
	Args       []json.RawMessage `json:"args"`

	Body      json.RawMessage `json:"body"`
	Constant  json.RawMessage `json:"constant"`
	Target    json.RawMessage `json:"target"`
	Left      json.RawMessage `json:"left"`
	Right     json.RawMessage `json:"right"`
	Operand   json.RawMessage `json:"operand"`
	Condition json.RawMessage `json:"condition"`
	Then      json.RawMessage `json:"then"`
	Else      json.RawMessage `json:"else"`
	Lower     json.RawMessage `json:"lower"`
	Upper     json.RawMessage `json:"upper"`
}

func (n *rawNode) UnmarshalJSON(data []byte) error {
	type plain rawNode
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	_, p.HasScope = probe["scope"]
	*n = rawNode(p)
	return nil
}

// Decode reads a JSON-encoded program.
func Decode(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*Program)
	if !ok {
		return nil, fmt.Errorf("expected a Program at the root, got %T", node)
	}
	return program, nil
}

func isAbsent(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeNode(data json.RawMessage) (AstNode, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding node: %w", err)
	}

	switch raw.Kind {
	case "Program":
		return decodeProgram(&raw)
	case "Decl":
		return decodeDecl(&raw)
	case "Variable":
		return decodeVariable(&raw)
	case "ConstantValue":
		return decodeConstant(&raw)
	case "Function":
		return decodeFunction(&raw)
	case "CompoundStatement":
		return decodeCompound(&raw)
	case "Print":
		target, err := decodeExpression(raw.Target)
		if err != nil {
			return nil, err
		}
		return &Print{Loc: raw.Loc, Target: target}, nil
	case "Read":
		target, err := decodeVariableRef(raw.Target)
		if err != nil {
			return nil, err
		}
		return &Read{Loc: raw.Loc, Target: target}, nil
	case "Assignment":
		target, err := decodeVariableRef(raw.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(raw.Value)
		if err != nil {
			return nil, err
		}
		return &Assignment{Loc: raw.Loc, Target: target, Value: value}, nil
	case "BinaryOp":
		return decodeBinaryOp(&raw)
	case "UnaryOp":
		return decodeUnaryOp(&raw)
	case "Invocation":
		args, err := decodeExpressions(raw.Args)
		if err != nil {
			return nil, err
		}
		return &Invocation{Loc: raw.Loc, Name: raw.Name, Args: args}, nil
	case "VariableRef":
		return &VariableRef{Loc: raw.Loc, Name: raw.Name}, nil
	case "If":
		return decodeIf(&raw)
	case "While":
		cond, err := decodeExpression(raw.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeCompoundField(raw.Body)
		if err != nil {
			return nil, err
		}
		return &While{Loc: raw.Loc, Condition: cond, Body: body}, nil
	case "For":
		return decodeFor(&raw)
	case "Return":
		value, err := decodeExpression(raw.Value)
		if err != nil {
			return nil, err
		}
		return &Return{Loc: raw.Loc, Value: value}, nil
	case "":
		return nil, fmt.Errorf("%s: node without a kind", raw.Loc)
	}
	return nil, fmt.Errorf("%s: unknown node kind %q", raw.Loc, raw.Kind)
}

func decodeProgram(raw *rawNode) (*Program, error) {
	scope, err := decodeScope(raw)
	if err != nil {
		return nil, err
	}
	p := &Program{Loc: raw.Loc, Name: raw.Name, FileName: raw.File, Scope: scope}
	for _, d := range raw.Decls {
		decl, err := decodeTyped[*Decl](d)
		if err != nil {
			return nil, err
		}
		p.Decls = append(p.Decls, decl)
	}
	for _, f := range raw.Functions {
		fn, err := decodeTyped[*Function](f)
		if err != nil {
			return nil, err
		}
		p.Functions = append(p.Functions, fn)
	}
	if p.Body, err = decodeCompoundField(raw.Body); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeDecl(raw *rawNode) (*Decl, error) {
	d := &Decl{Loc: raw.Loc}
	for _, v := range raw.Variables {
		variable, err := decodeTyped[*Variable](v)
		if err != nil {
			return nil, err
		}
		d.Variables = append(d.Variables, variable)
	}
	return d, nil
}

func decodeVariable(raw *rawNode) (*Variable, error) {
	typ, err := ParseType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Loc, err)
	}
	v := &Variable{Loc: raw.Loc, Name: raw.Name, Type: typ}
	if !isAbsent(raw.Constant) {
		if v.Constant, err = decodeTyped[*ConstantValue](raw.Constant); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func decodeConstant(raw *rawNode) (*ConstantValue, error) {
	typ, err := ParseType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Loc, err)
	}
	c := &ConstantValue{Loc: raw.Loc, Type: typ}

	var b bool
	if err := json.Unmarshal(raw.Value, &b); err == nil {
		if b {
			c.Value = 1
		}
		return c, nil
	}
	if err := json.Unmarshal(raw.Value, &c.Value); err != nil {
		return nil, fmt.Errorf("%s: invalid constant value %s", raw.Loc, string(raw.Value))
	}
	return c, nil
}

func decodeFunction(raw *rawNode) (*Function, error) {
	scope, err := decodeScope(raw)
	if err != nil {
		return nil, err
	}
	fn := &Function{Loc: raw.Loc, Name: raw.Name, Scope: scope}
	if raw.Type != "" {
		if fn.ReturnType, err = ParseType(raw.Type); err != nil {
			return nil, fmt.Errorf("%s: %w", raw.Loc, err)
		}
	}
	for _, p := range raw.Params {
		decl, err := decodeTyped[*Decl](p)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, decl)
	}
	if fn.Body, err = decodeCompoundField(raw.Body); err != nil {
		return nil, err
	}
	return fn, nil
}

func decodeCompound(raw *rawNode) (*CompoundStatement, error) {
	scope, err := decodeScope(raw)
	if err != nil {
		return nil, err
	}
	c := &CompoundStatement{Loc: raw.Loc, Scope: scope}
	for _, d := range raw.Decls {
		decl, err := decodeTyped[*Decl](d)
		if err != nil {
			return nil, err
		}
		c.Decls = append(c.Decls, decl)
	}
	for _, s := range raw.Statements {
		node, err := decodeNode(s)
		if err != nil {
			return nil, err
		}
		stmt, ok := node.(Statement)
		if !ok {
			return nil, fmt.Errorf("%s: %T is not a statement", node.GetLocation(), node)
		}
		c.Statements = append(c.Statements, stmt)
	}
	return c, nil
}

func decodeBinaryOp(raw *rawNode) (*BinaryOp, error) {
	op, err := ParseOperator(raw.Op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Loc, err)
	}
	left, err := decodeExpression(raw.Left)
	if err != nil {
		return nil, err
	}
	right, err := decodeExpression(raw.Right)
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Loc: raw.Loc, Operator: op, Left: left, Right: right}, nil
}

func decodeUnaryOp(raw *rawNode) (*UnaryOp, error) {
	op, err := ParseOperator(raw.Op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Loc, err)
	}
	if op == OpMinus {
		op = OpNeg
	}
	operand, err := decodeExpression(raw.Operand)
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Loc: raw.Loc, Operator: op, Operand: operand}, nil
}

func decodeIf(raw *rawNode) (*If, error) {
	cond, err := decodeExpression(raw.Condition)
	if err != nil {
		return nil, err
	}
	then, err := decodeCompoundField(raw.Then)
	if err != nil {
		return nil, err
	}
	result := &If{Loc: raw.Loc, Condition: cond, Then: then}
	if !isAbsent(raw.Else) {
		if result.Else, err = decodeCompoundField(raw.Else); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func decodeFor(raw *rawNode) (*For, error) {
	scope, err := decodeScope(raw)
	if err != nil {
		return nil, err
	}
	lower, err := decodeExpression(raw.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := decodeExpression(raw.Upper)
	if err != nil {
		return nil, err
	}
	body, err := decodeCompoundField(raw.Body)
	if err != nil {
		return nil, err
	}
	return &For{Loc: raw.Loc, Scope: scope, Var: raw.Var, Lower: lower, Upper: upper, Body: body}, nil
}

func decodeScope(raw *rawNode) (*symbols.Table, error) {
	if !raw.HasScope {
		return nil, nil
	}
	table := symbols.NewTable()
	for _, re := range raw.Scope {
		entry, err := decodeEntry(re)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.Loc, err)
		}
		table.Add(entry)
	}
	return table, nil
}

func decodeEntry(re rawEntry) (*symbols.Entry, error) {
	typ, err := ParseType(re.Type)
	if err != nil {
		return nil, fmt.Errorf("symbol %s: %w", re.Name, err)
	}
	switch re.Kind {
	case "variable":
		return symbols.NewVariable(re.Name, typ, re.Level), nil
	case "parameter":
		return symbols.NewParameter(re.Name, typ, re.Level), nil
	case "constant":
		if re.Value == nil {
			return nil, fmt.Errorf("constant %s has no value", re.Name)
		}
		return symbols.NewConstant(re.Name, typ, re.Level, *re.Value), nil
	}
	return nil, fmt.Errorf("symbol %s: unknown kind %q", re.Name, re.Kind)
}

func decodeTyped[T AstNode](data json.RawMessage) (T, error) {
	var zero T
	node, err := decodeNode(data)
	if err != nil {
		return zero, err
	}
	typed, ok := node.(T)
	if !ok {
		return zero, fmt.Errorf("%s: expected %T, got %T", node.GetLocation(), zero, node)
	}
	return typed, nil
}

func decodeCompoundField(data json.RawMessage) (*CompoundStatement, error) {
	if isAbsent(data) {
		return nil, nil
	}
	return decodeTyped[*CompoundStatement](data)
}

func decodeVariableRef(data json.RawMessage) (*VariableRef, error) {
	if isAbsent(data) {
		return nil, fmt.Errorf("missing variable reference")
	}
	return decodeTyped[*VariableRef](data)
}

func decodeExpression(data json.RawMessage) (Expression, error) {
	if isAbsent(data) {
		return nil, fmt.Errorf("missing expression")
	}
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(Expression)
	if !ok {
		return nil, fmt.Errorf("%s: %T is not an expression", node.GetLocation(), node)
	}
	return expr, nil
}

func decodeExpressions(items []json.RawMessage) ([]Expression, error) {
	result := make([]Expression, 0, len(items))
	for _, item := range items {
		expr, err := decodeExpression(item)
		if err != nil {
			return nil, err
		}
		result = append(result, expr)
	}
	return result, nil
}

// ParseType parses type names such as "integer", "boolean" or "integer[3][4]".
func ParseType(s string) (types.Type, error) {
	base, dims, hasDims := strings.Cut(s, "[")
	if base == "" {
		return nil, fmt.Errorf("empty type name")
	}
	typ := types.NewBaseType(base)
	if !hasDims {
		return typ, nil
	}

	var dimensions []int
	for _, part := range strings.Split("["+dims, "[") {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(part, "]"))
		if err != nil || !strings.HasSuffix(part, "]") {
			return nil, fmt.Errorf("invalid array type %q", s)
		}
		dimensions = append(dimensions, n)
	}
	return types.NewArrayType(typ, dimensions...), nil
}
