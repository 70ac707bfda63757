package types

import (
	"fmt"
)

// Type represents a source-language type as resolved by semantic analysis.
type Type interface {
	fmt.Stringer
	isType()
	// Equals returns true if this type is equal to the other type
	Equals(other Type) bool
}

// BaseType represents scalar types like integer, boolean, real
type BaseType struct {
	Name string
}

func (b *BaseType) isType() {}

func (b *BaseType) String() string {
	return b.Name
}

func (b *BaseType) Equals(other Type) bool {
	if otherBase, ok := other.(*BaseType); ok {
		return b.Name == otherBase.Name
	}
	return false
}

// ArrayType represents an array of another type. Code generation rejects it,
// but the type has to be representable so the rejection can name it.
type ArrayType struct {
	ElementType Type
	Dimensions  []int
}

func (a *ArrayType) isType() {}

func (a *ArrayType) String() string {
	s := a.ElementType.String()
	for _, d := range a.Dimensions {
		s += fmt.Sprintf("[%d]", d)
	}
	return s
}

func (a *ArrayType) Equals(other Type) bool {
	otherArr, ok := other.(*ArrayType)
	if !ok || len(a.Dimensions) != len(otherArr.Dimensions) {
		return false
	}
	for i := range a.Dimensions {
		if a.Dimensions[i] != otherArr.Dimensions[i] {
			return false
		}
	}
	return a.ElementType.Equals(otherArr.ElementType)
}

// Common base types - singleton instances
var (
	Integer = &BaseType{Name: "integer"}
	Boolean = &BaseType{Name: "boolean"}
	Real    = &BaseType{Name: "real"}
	String  = &BaseType{Name: "string"}
	Void    = &BaseType{Name: "void"}
)

// IsScalar reports whether values of typ fit a single 4-byte slot.
func IsScalar(typ Type) bool {
	return typ == Integer || typ == Boolean
}

// NewBaseType creates a base type, returning singleton instances for common types
func NewBaseType(name string) *BaseType {
	switch name {
	case "integer":
		return Integer
	case "boolean":
		return Boolean
	case "real":
		return Real
	case "string":
		return String
	case "void":
		return Void
	default:
		return &BaseType{Name: name}
	}
}

// NewArrayType creates a new array type
func NewArrayType(elementType Type, dimensions ...int) *ArrayType {
	return &ArrayType{ElementType: elementType, Dimensions: dimensions}
}
