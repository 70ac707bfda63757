package ast

import "fmt"

type Operator int

const (
	OpPlus Operator = iota
	OpMinus
	OpMultiply
	OpDivide
	OpMod
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
	OpNot
	OpNeg
)

var operatorNames = map[Operator]string{
	OpPlus:           "+",
	OpMinus:          "-",
	OpMultiply:       "*",
	OpDivide:         "/",
	OpMod:            "mod",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpEqual:          "=",
	OpNotEqual:       "<>",
	OpAnd:            "and",
	OpOr:             "or",
	OpNot:            "not",
	OpNeg:            "neg",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

func (o Operator) IsRelational() bool {
	return o >= OpLess && o <= OpNotEqual
}

func (o Operator) IsUnary() bool {
	return o == OpNot || o == OpNeg
}
