package rvsim

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	codeBase  = 0x00010000
	dataBase  = 0x00100000
	stackTop  = 0x7ffffff0
	haltValue = 0
)

var registerNames = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

type operandKind int

const (
	operandReg operandKind = iota
	operandImm
	operandMem
	operandLabel
)

type operand struct {
	kind  operandKind
	reg   int
	imm   int32
	label string
}

type instruction struct {
	lineNo   int
	mnemonic string
	operands []operand
}

// Program is assembly text loaded into instructions and initial data.
type Program struct {
	instructions []instruction
	codeLabels   map[string]int
	dataLabels   map[string]uint32
	data         map[uint32]int32
}

// Parse reads the subset of GNU assembler syntax the code generator emits.
// Directives other than .section, .comm and .word are accepted and ignored.
func Parse(src string) (*Program, error) {
	p := &Program{
		codeLabels: make(map[string]int),
		dataLabels: make(map[string]uint32),
		data:       make(map[uint32]int32),
	}
	section := "text"
	dataNext := uint32(dataBase)

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := stripComment(raw)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			name := strings.TrimSuffix(line, ":")
			if name == "" || strings.ContainsAny(name, " \t") {
				return nil, fmt.Errorf("line %d: invalid label %q", lineNo, line)
			}
			if _, ok := p.codeLabels[name]; ok {
				return nil, fmt.Errorf("line %d: duplicate label %s", lineNo, name)
			}
			if _, ok := p.dataLabels[name]; ok {
				return nil, fmt.Errorf("line %d: duplicate label %s", lineNo, name)
			}
			if section == "text" {
				p.codeLabels[name] = len(p.instructions)
			} else {
				p.dataLabels[name] = dataNext
			}
			continue
		}

		mnemonic, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if strings.HasPrefix(mnemonic, ".") {
			switch mnemonic {
			case ".section":
				section = strings.TrimPrefix(strings.TrimSpace(rest), ".")
			case ".text":
				section = "text"
			case ".data", ".rodata", ".bss":
				section = strings.TrimPrefix(mnemonic, ".")
			case ".comm":
				args := splitOperands(rest)
				if len(args) < 2 {
					return nil, fmt.Errorf("line %d: .comm needs a name and a size", lineNo)
				}
				size, err := strconv.Atoi(args[1])
				if err != nil || size <= 0 {
					return nil, fmt.Errorf("line %d: invalid .comm size %q", lineNo, args[1])
				}
				if _, ok := p.dataLabels[args[0]]; ok {
					return nil, fmt.Errorf("line %d: duplicate label %s", lineNo, args[0])
				}
				p.dataLabels[args[0]] = dataNext
				dataNext += uint32((size + 3) &^ 3)
			case ".word":
				for _, arg := range splitOperands(rest) {
					v, err := strconv.ParseInt(arg, 0, 64)
					if err != nil {
						return nil, fmt.Errorf("line %d: invalid .word %q", lineNo, arg)
					}
					p.data[dataNext] = int32(v)
					dataNext += 4
				}
			}
			continue
		}

		if section != "text" {
			return nil, fmt.Errorf("line %d: instruction %s outside .text", lineNo, mnemonic)
		}

		inst := instruction{lineNo: lineNo, mnemonic: mnemonic}
		for _, arg := range splitOperands(rest) {
			op, err := parseOperand(arg)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			inst.operands = append(inst.operands, op)
		}
		if err := checkImmediates(inst); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		p.instructions = append(p.instructions, inst)
	}

	return p, nil
}

// I-type instructions encode their immediate in 12 signed bits.
var itypeInstructions = map[string]bool{
	"addi": true, "andi": true, "ori": true, "xori": true, "slti": true,
}

const (
	minImm12 = -2048
	maxImm12 = 2047
)

// checkImmediates rejects immediates and memory offsets the assembler could not encode.
// li is a pseudo-instruction and takes any 32-bit value.
func checkImmediates(inst instruction) error {
	for _, op := range inst.operands {
		switch {
		case op.kind == operandMem && (op.imm < minImm12 || op.imm > maxImm12):
			return fmt.Errorf("%s: offset %d out of 12-bit range", inst.mnemonic, op.imm)
		case op.kind == operandImm && itypeInstructions[inst.mnemonic] && (op.imm < minImm12 || op.imm > maxImm12):
			return fmt.Errorf("%s: immediate %d out of 12-bit range", inst.mnemonic, op.imm)
		}
	}
	return nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func splitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseOperand(s string) (operand, error) {
	if reg, ok := parseRegister(s); ok {
		return operand{kind: operandReg, reg: reg}, nil
	}

	if open := strings.IndexByte(s, '('); open >= 0 && strings.HasSuffix(s, ")") {
		reg, ok := parseRegister(s[open+1 : len(s)-1])
		if !ok {
			return operand{}, fmt.Errorf("invalid base register in %q", s)
		}
		var offset int64
		if open > 0 {
			v, err := strconv.ParseInt(s[:open], 0, 32)
			if err != nil {
				return operand{}, fmt.Errorf("invalid offset in %q", s)
			}
			offset = v
		}
		return operand{kind: operandMem, reg: reg, imm: int32(offset)}, nil
	}

	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		if v < -1<<31 || v > 1<<32-1 {
			return operand{}, fmt.Errorf("immediate %s out of range", s)
		}
		return operand{kind: operandImm, imm: int32(v)}, nil
	}

	if s == "" {
		return operand{}, fmt.Errorf("empty operand")
	}
	return operand{kind: operandLabel, label: s}, nil
}

func parseRegister(s string) (int, bool) {
	if reg, ok := registerNames[s]; ok {
		return reg, true
	}
	if len(s) > 1 && s[0] == 'x' {
		n, err := strconv.Atoi(s[1:])
		if err == nil && n >= 0 && n < 32 {
			return n, true
		}
	}
	return 0, false
}
