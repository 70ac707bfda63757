package riscv

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/LeeLin2602/lin-compiler/internal/asm"
	"github.com/LeeLin2602/lin-compiler/internal/ast"
	"github.com/LeeLin2602/lin-compiler/internal/codegen/common"
	"github.com/LeeLin2602/lin-compiler/internal/config"
	"github.com/LeeLin2602/lin-compiler/internal/symbols"
	"github.com/LeeLin2602/lin-compiler/internal/types"
	"github.com/LeeLin2602/lin-compiler/internal/util"
)

const (
	WORD_SIZE = 4
	// ra and s0 are saved in the top two words of every frame.
	FRAME_CURSOR_START = -2 * WORD_SIZE
	// Largest frame whose size fits the 12-bit signed immediates of the prologue.
	MAX_FRAME_SIZE = config.MaxFrameSize
	SP_ALIGNMENT   = 16
)

// generator is the state of one generation run. Nothing here outlives Generate.
type generator struct {
	abi       config.ABI
	log       *slog.Logger
	scopes    *symbols.Chain
	nextLabel int

	// Function-specific.
	functionName string
	cursor       int
	lines        []asm.Line
}

func newGenerator(abi config.ABI, logger *slog.Logger) *generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &generator{
		abi:       abi,
		log:       logger,
		scopes:    symbols.NewChain(),
		nextLabel: 1,
	}
}

// Generate lowers an annotated program into RISC-V assembly.
func Generate(program *ast.Program, abi config.ABI, logger *slog.Logger) (asm.Program, error) {
	g := newGenerator(abi, logger)
	return g.generateProgram(program)
}

func (g *generator) generateProgram(program *ast.Program) (asm.Program, error) {
	result := asm.Program{File: program.FileName}

	if err := g.checkReservedNames(program); err != nil {
		return result, err
	}

	g.scopes.Enter(program.Scope)
	defer g.scopes.Exit(program.Scope)

	for _, entry := range program.Scope.Entries() {
		if !types.IsScalar(entry.Type) {
			return result, common.Unsupported(program.Loc, "global %s has type %s", entry.Name, entry.Type)
		}
		switch entry.Kind {
		case symbols.KindVariable:
			result.Globals = append(result.Globals, asm.GlobalVariable{Label: entry.Name, Size: WORD_SIZE, Align: WORD_SIZE})
		case symbols.KindConstant:
			if _, err := immediate(program.Loc, *entry.Value); err != nil {
				return result, err
			}
			result.Constants = append(result.Constants, asm.GlobalConstant{Label: entry.Name, Value: *entry.Value})
		default:
			return result, common.Unsupported(program.Loc, "%s %s at global level", entry.Kind, entry.Name)
		}
	}
	g.log.Debug("emitted global storage", "variables", len(result.Globals), "constants", len(result.Constants))

	for _, fn := range program.Functions {
		asmFn, err := g.generateFunction(fn)
		if err != nil {
			return result, fmt.Errorf("error when generating code for function %s: %w", fn.Name, err)
		}
		result.Functions = append(result.Functions, asmFn)
	}

	g.beginFunction(g.abi.Entry)
	if program.Body != nil {
		if err := g.generateCompound(program.Body); err != nil {
			return result, fmt.Errorf("error when generating code for %s: %w", g.abi.Entry, err)
		}
	}
	entry, err := g.finishFunction(program.Loc, true)
	if err != nil {
		return result, err
	}
	result.Functions = append(result.Functions, entry)

	g.log.Debug("generation complete", "functions", len(result.Functions), "labels", g.nextLabel-1)
	return result, nil
}

// Functions and globals share the assembler's symbol namespace with the entry
// point and the runtime helpers. Register names would be read as operands.
func (g *generator) checkReservedNames(program *ast.Program) error {
	reserved := map[string]string{
		g.abi.Entry:       "the entry point",
		g.abi.PrintHelper: "a runtime helper",
		g.abi.ReadHelper:  "a runtime helper",
	}
	for _, fn := range program.Functions {
		if what, ok := reserved[fn.Name]; ok {
			return common.Unsupported(fn.Loc, "function name %s is reserved for %s", fn.Name, what)
		}
		if isRegisterName(fn.Name) {
			return common.Unsupported(fn.Loc, "function name %s is a register name", fn.Name)
		}
	}
	for _, entry := range program.Scope.Entries() {
		if what, ok := reserved[entry.Name]; ok {
			return common.Unsupported(program.Loc, "global %s is reserved for %s", entry.Name, what)
		}
		if isRegisterName(entry.Name) {
			return common.Unsupported(program.Loc, "global %s is a register name", entry.Name)
		}
	}
	return nil
}

var registerNames = map[string]bool{
	"zero": true, "ra": true, "sp": true, "gp": true, "tp": true, "fp": true,
	"t0": true, "t1": true, "t2": true, "t3": true, "t4": true, "t5": true, "t6": true,
	"s0": true, "s1": true, "s2": true, "s3": true, "s4": true, "s5": true,
	"s6": true, "s7": true, "s8": true, "s9": true, "s10": true, "s11": true,
	"a0": true, "a1": true, "a2": true, "a3": true, "a4": true, "a5": true, "a6": true, "a7": true,
}

func isRegisterName(name string) bool {
	if registerNames[name] {
		return true
	}
	if len(name) > 1 && name[0] == 'x' {
		n, err := strconv.Atoi(name[1:])
		return err == nil && n >= 0 && n < 32
	}
	return false
}

func (g *generator) generateFunction(fn *ast.Function) (asm.Function, error) {
	g.log.Debug("generating function", "name", fn.Name)

	nParams := 0
	for _, entry := range fn.Scope.Entries() {
		if entry.Kind == symbols.KindParameter {
			nParams++
		}
	}
	if nParams > g.abi.MaxArgs() {
		return asm.Function{}, common.Unsupported(fn.Loc, "function %s has %d parameters, at most %d supported", fn.Name, nParams, g.abi.MaxArgs())
	}

	g.beginFunction(fn.Name)

	g.scopes.Enter(fn.Scope)
	defer g.scopes.Exit(fn.Scope)

	if err := g.installFrame(fn.Scope, fn.Loc); err != nil {
		return asm.Function{}, err
	}
	if fn.Body != nil {
		if err := g.generateCompound(fn.Body); err != nil {
			return asm.Function{}, err
		}
	}
	return g.finishFunction(fn.Loc, false)
}

// beginFunction resets the per-function state. The frame cursor is reset here
// and nowhere else, so nested blocks keep allocating below their parents.
func (g *generator) beginFunction(name string) {
	g.functionName = name
	g.cursor = FRAME_CURSOR_START
	g.lines = nil
}

// finishFunction wraps the collected body in a prologue and an epilogue sized
// for the slots that were actually allocated.
func (g *generator) finishFunction(loc ast.Location, global bool) (asm.Function, error) {
	frameSize, err := g.frameSize(loc)
	if err != nil {
		return asm.Function{}, err
	}
	g.log.Debug("function frame", "name", g.functionName, "slots_bytes", -g.cursor, "frame_size", frameSize)

	result := asm.Function{Name: g.functionName, Global: global}
	result.Lines = append(result.Lines,
		asm.Comment(fmt.Sprintf("frame size: %d bytes", frameSize)),
		asm.Op3("addi", asm.SP, asm.SP, asm.Imm(-frameSize)),
		asm.Op2("sw", asm.RA, asm.DerefWithOffset(asm.SP, frameSize-WORD_SIZE)),
		asm.Op2("sw", asm.S0, asm.DerefWithOffset(asm.SP, frameSize-2*WORD_SIZE)),
		asm.Op3("addi", asm.S0, asm.SP, asm.Imm(frameSize)))
	result.Lines = append(result.Lines, g.lines...)
	result.Lines = append(result.Lines,
		asm.Label(g.exitLabel()),
		asm.Op2("lw", asm.RA, asm.DerefWithOffset(asm.SP, frameSize-WORD_SIZE)),
		asm.Op2("lw", asm.S0, asm.DerefWithOffset(asm.SP, frameSize-2*WORD_SIZE)),
		asm.Op3("addi", asm.SP, asm.SP, asm.Imm(frameSize)),
		asm.Op1("jr", asm.RA))

	g.lines = nil
	return result, nil
}

func (g *generator) frameSize(loc ast.Location) (int, error) {
	size := max(g.abi.FrameSize, int(util.Align(int64(-g.cursor), SP_ALIGNMENT)))
	if size > MAX_FRAME_SIZE {
		return 0, common.Unsupported(loc, "function %s needs a %d byte frame, at most %d supported", g.functionName, size, MAX_FRAME_SIZE)
	}
	return size, nil
}

func (g *generator) exitLabel() string {
	return fmt.Sprintf(".L%s_exit", g.functionName)
}

func (g *generator) newLabel() string {
	label := fmt.Sprintf(".L%d", g.nextLabel)
	g.nextLabel++
	return label
}

func (g *generator) emit(lines ...asm.Line) {
	g.lines = append(g.lines, lines...)
}
