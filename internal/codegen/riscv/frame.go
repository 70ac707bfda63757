package riscv

import (
	"fmt"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/codegen/common"
	"github.com/LeeLin2602/lin-compiler/internal/symbols"
	"github.com/LeeLin2602/lin-compiler/internal/types"
)

// installFrame gives every entry of a local scope its own slot below the
// current cursor, in declaration order. Constants are materialized and
// parameters are spilled from their argument registers right away.
func (g *generator) installFrame(table *symbols.Table, loc ast.Location) error {
	argIndex := 0
	for _, entry := range table.Entries() {
		if !types.IsScalar(entry.Type) {
			return common.Unsupported(loc, "%s %s has type %s", entry.Kind, entry.Name, entry.Type)
		}

		g.cursor -= g.abi.SlotSize
		entry.StackLocation = g.cursor

		switch entry.Kind {
		case symbols.KindConstant:
			value, err := immediate(loc, *entry.Value)
			if err != nil {
				return err
			}
			g.emit(
				asm.Comment(fmt.Sprintf("local constant %s", entry.Name)),
				asm.Op2("li", asm.T0, asm.Imm(value)),
				asm.Op2("sw", asm.T0, asm.DerefWithOffset(asm.S0, entry.StackLocation)))
		case symbols.KindParameter:
			if argIndex >= g.abi.MaxArgs() {
				return common.Unsupported(loc, "parameter %s does not fit the %d argument registers", entry.Name, g.abi.MaxArgs())
			}
			reg := asm.Reg(g.abi.ArgRegister(argIndex))
			argIndex++
			g.emit(
				asm.Comment(fmt.Sprintf("parameter %s", entry.Name)),
				asm.Op2("sw", reg, asm.DerefWithOffset(asm.S0, entry.StackLocation)))
		}
	}

	if table.Len() > 0 {
		g.log.Debug("installed frame", "function", g.functionName, "entries", table.Len(), "cursor", g.cursor)
	}
	return nil
}

// loadAddress puts the address of entry into reg.
func (g *generator) loadAddress(reg asm.Arg, entry *symbols.Entry) {
	if entry.IsGlobal() {
		g.emit(asm.Op2("la", reg, asm.Ref(entry.Name)))
	} else {
		g.emit(asm.Op3("addi", reg, asm.S0, asm.Imm(entry.StackLocation)))
	}
}

func (g *generator) resolve(ref *ast.VariableRef) (*symbols.Entry, error) {
	entry, ok := g.scopes.Lookup(ref.Name)
	if !ok {
		return nil, common.Unresolved(ref.Loc, ref.Name)
	}
	if !types.IsScalar(entry.Type) {
		return nil, common.Unsupported(ref.Loc, "reference to %s of type %s", entry.Name, entry.Type)
	}
	return entry, nil
}

// immediate checks that value fits the 32-bit li pseudo-instruction.
func immediate(loc ast.Location, value int64) (int, error) {
	if value < -1<<31 || value > 1<<31-1 {
		return 0, common.Unsupported(loc, "constant %d does not fit in 32 bits", value)
	}
	return int(value), nil
}
