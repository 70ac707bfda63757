package rvsim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrStepLimit     = errors.New("step limit exceeded")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrBadAccess     = errors.New("misaligned memory access")
	ErrInput         = errors.New("no integer on input")
)

const DefaultMaxSteps = 10_000_000

// Options configure one run of a Machine.
type Options struct {
	Entry       string
	PrintHelper string
	ReadHelper  string
	Input       io.Reader
	Output      io.Writer
	MaxSteps    int
}

// Result describes how a run ended.
type Result struct {
	Steps int
	// Exit is a0 when the entry function returned.
	Exit int32
	// StackBalanced reports whether sp and s0 were restored to their initial values.
	StackBalanced bool
}

// Machine executes a parsed Program. printInt and readInt style helpers are
// served in Go instead of through a C library.
type Machine struct {
	program *Program
	opts    Options
	in      *bufio.Scanner

	regs [32]int32
	pc   int
	mem  map[uint32]int32
}

func New(program *Program, opts Options) *Machine {
	if opts.Entry == "" {
		opts.Entry = "main"
	}
	if opts.PrintHelper == "" {
		opts.PrintHelper = "printInt"
	}
	if opts.ReadHelper == "" {
		opts.ReadHelper = "readInt"
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}

	m := &Machine{program: program, opts: opts, mem: make(map[uint32]int32)}
	if opts.Input != nil {
		m.in = bufio.NewScanner(opts.Input)
		m.in.Split(bufio.ScanWords)
	}
	for addr, v := range program.data {
		m.mem[addr] = v
	}
	return m
}

// Run parses src and executes it from the entry function.
func Run(src string, opts Options) (Result, error) {
	program, err := Parse(src)
	if err != nil {
		return Result{}, err
	}
	return New(program, opts).Run()
}

func (m *Machine) Run() (Result, error) {
	entry, ok := m.program.codeLabels[m.opts.Entry]
	if !ok {
		return Result{}, fmt.Errorf("%w: entry %s", ErrUnknownSymbol, m.opts.Entry)
	}

	m.pc = entry
	m.regs[1] = haltValue
	m.regs[2] = stackTop
	m.regs[8] = stackTop

	var result Result
	for {
		if result.Steps >= m.opts.MaxSteps {
			return result, fmt.Errorf("%w: %d", ErrStepLimit, m.opts.MaxSteps)
		}
		if m.pc < 0 || m.pc >= len(m.program.instructions) {
			return result, fmt.Errorf("pc %d outside program", m.pc)
		}

		inst := m.program.instructions[m.pc]
		result.Steps++
		halted, err := m.step(inst)
		if err != nil {
			return result, fmt.Errorf("line %d: %s: %w", inst.lineNo, inst.mnemonic, err)
		}
		if halted {
			result.Exit = m.regs[10]
			result.StackBalanced = m.regs[2] == stackTop && m.regs[8] == stackTop
			return result, nil
		}
	}
}

// Register returns the current value of register x<n>.
func (m *Machine) Register(n int) int32 {
	return m.regs[n]
}

// Word returns the memory word at the address of a data label.
func (m *Machine) Word(label string) (int32, error) {
	addr, ok := m.program.dataLabels[label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, label)
	}
	return m.mem[addr], nil
}

func (m *Machine) step(inst instruction) (bool, error) {
	ops := inst.operands
	next := m.pc + 1

	switch inst.mnemonic {
	case "nop":
	case "li":
		if err := arity(ops, operandReg, operandImm); err != nil {
			return false, err
		}
		m.set(ops[0].reg, ops[1].imm)
	case "la":
		if err := arity(ops, operandReg, operandLabel); err != nil {
			return false, err
		}
		addr, ok := m.program.dataLabels[ops[1].label]
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrUnknownSymbol, ops[1].label)
		}
		m.set(ops[0].reg, int32(addr))
	case "mv", "neg", "not", "seqz", "snez", "sltz", "sgtz":
		if err := arity(ops, operandReg, operandReg); err != nil {
			return false, err
		}
		m.set(ops[0].reg, unary(inst.mnemonic, m.regs[ops[1].reg]))
	case "add", "sub", "mul", "div", "rem", "and", "or", "xor", "slt", "sll", "sra":
		if err := arity(ops, operandReg, operandReg, operandReg); err != nil {
			return false, err
		}
		m.set(ops[0].reg, binary(inst.mnemonic, m.regs[ops[1].reg], m.regs[ops[2].reg]))
	case "addi", "andi", "ori", "xori", "slti":
		if err := arity(ops, operandReg, operandReg, operandImm); err != nil {
			return false, err
		}
		m.set(ops[0].reg, binary(inst.mnemonic[:len(inst.mnemonic)-1], m.regs[ops[1].reg], ops[2].imm))
	case "lw":
		if err := arity(ops, operandReg, operandMem); err != nil {
			return false, err
		}
		v, err := m.load(m.address(ops[1]))
		if err != nil {
			return false, err
		}
		m.set(ops[0].reg, v)
	case "sw":
		if err := arity(ops, operandReg, operandMem); err != nil {
			return false, err
		}
		if err := m.store(m.address(ops[1]), m.regs[ops[0].reg]); err != nil {
			return false, err
		}
	case "j":
		if err := arity(ops, operandLabel); err != nil {
			return false, err
		}
		target, err := m.codeLabel(ops[0].label)
		if err != nil {
			return false, err
		}
		next = target
	case "jal", "call":
		var link int
		var label string
		switch {
		case len(ops) == 1 && ops[0].kind == operandLabel:
			link, label = 1, ops[0].label
		case arity(ops, operandReg, operandLabel) == nil:
			link, label = ops[0].reg, ops[1].label
		default:
			return false, fmt.Errorf("expected [reg,] label")
		}
		handled, err := m.helper(label)
		if err != nil {
			return false, err
		}
		if !handled {
			target, err := m.codeLabel(label)
			if err != nil {
				return false, err
			}
			next = target
		}
		// Helpers clobber the link register like any other call.
		m.set(link, codeAddress(m.pc+1))
	case "jr", "ret":
		reg := 1
		if inst.mnemonic == "jr" {
			if err := arity(ops, operandReg); err != nil {
				return false, err
			}
			reg = ops[0].reg
		}
		addr := m.regs[reg]
		if addr == haltValue {
			return true, nil
		}
		target, err := codeIndex(addr)
		if err != nil {
			return false, err
		}
		next = target
	case "beqz", "bnez", "bltz", "bgez":
		if err := arity(ops, operandReg, operandLabel); err != nil {
			return false, err
		}
		if branch(inst.mnemonic[:3], m.regs[ops[0].reg], 0) {
			target, err := m.codeLabel(ops[1].label)
			if err != nil {
				return false, err
			}
			next = target
		}
	case "beq", "bne", "blt", "bge":
		if err := arity(ops, operandReg, operandReg, operandLabel); err != nil {
			return false, err
		}
		if branch(inst.mnemonic, m.regs[ops[0].reg], m.regs[ops[1].reg]) {
			target, err := m.codeLabel(ops[2].label)
			if err != nil {
				return false, err
			}
			next = target
		}
	default:
		return false, fmt.Errorf("unsupported instruction")
	}

	m.pc = next
	return false, nil
}

// helper serves calls to the print and read runtime helpers.
func (m *Machine) helper(label string) (bool, error) {
	switch label {
	case m.opts.PrintHelper:
		if _, err := fmt.Fprintf(m.opts.Output, "%d\n", m.regs[10]); err != nil {
			return true, err
		}
		return true, nil
	case m.opts.ReadHelper:
		v, err := m.readInt()
		if err != nil {
			return true, err
		}
		m.set(10, v)
		return true, nil
	}
	return false, nil
}

func (m *Machine) readInt() (int32, error) {
	if m.in == nil || !m.in.Scan() {
		if m.in != nil && m.in.Err() != nil {
			return 0, m.in.Err()
		}
		return 0, ErrInput
	}
	var v int64
	if _, err := fmt.Sscanf(m.in.Text(), "%d", &v); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInput, m.in.Text())
	}
	return int32(v), nil
}

func (m *Machine) set(reg int, v int32) {
	if reg != 0 {
		m.regs[reg] = v
	}
}

func (m *Machine) address(op operand) uint32 {
	return uint32(m.regs[op.reg] + op.imm)
}

func (m *Machine) load(addr uint32) (int32, error) {
	if addr%4 != 0 {
		return 0, fmt.Errorf("%w: load from 0x%08x", ErrBadAccess, addr)
	}
	return m.mem[addr], nil
}

func (m *Machine) store(addr uint32, v int32) error {
	if addr%4 != 0 {
		return fmt.Errorf("%w: store to 0x%08x", ErrBadAccess, addr)
	}
	m.mem[addr] = v
	return nil
}

func (m *Machine) codeLabel(label string) (int, error) {
	target, ok := m.program.codeLabels[label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, label)
	}
	return target, nil
}

func codeAddress(index int) int32 {
	return int32(codeBase + index*4)
}

func codeIndex(addr int32) (int, error) {
	if addr < codeBase || (addr-codeBase)%4 != 0 {
		return 0, fmt.Errorf("jump to invalid address 0x%08x", uint32(addr))
	}
	return int(addr-codeBase) / 4, nil
}

func arity(ops []operand, kinds ...operandKind) error {
	if len(ops) != len(kinds) {
		return fmt.Errorf("expected %d operands, got %d", len(kinds), len(ops))
	}
	for i, k := range kinds {
		if ops[i].kind != k {
			return fmt.Errorf("operand %d has the wrong kind", i+1)
		}
	}
	return nil
}

func unary(op string, a int32) int32 {
	switch op {
	case "mv":
		return a
	case "neg":
		return -a
	case "not":
		return ^a
	case "seqz":
		return boolWord(a == 0)
	case "snez":
		return boolWord(a != 0)
	case "sltz":
		return boolWord(a < 0)
	case "sgtz":
		return boolWord(a > 0)
	}
	panic("unreachable: " + op)
}

// binary follows RV32IM semantics, including division by zero and overflow.
func binary(op string, a, b int32) int32 {
	switch op {
	case "add":
		return a + b
	case "sub":
		return a - b
	case "mul":
		return a * b
	case "div":
		switch {
		case b == 0:
			return -1
		case a == math.MinInt32 && b == -1:
			return a
		}
		return a / b
	case "rem":
		switch {
		case b == 0:
			return a
		case a == math.MinInt32 && b == -1:
			return 0
		}
		return a % b
	case "and":
		return a & b
	case "or":
		return a | b
	case "xor":
		return a ^ b
	case "slt":
		return boolWord(a < b)
	case "sll":
		return a << (uint32(b) & 31)
	case "sra":
		return a >> (uint32(b) & 31)
	}
	panic("unreachable: " + op)
}

func branch(op string, a, b int32) bool {
	switch op {
	case "beq":
		return a == b
	case "bne":
		return a != b
	case "blt":
		return a < b
	case "bge":
		return a >= b
	}
	panic("unreachable: " + op)
}

func boolWord(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
