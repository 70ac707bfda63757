package rvsim

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		input  string
		output string
		exit   int32
	}{
		{
			name: "print constant",
			src: `
main:
    mv s1, ra
    li a0, 42
    jal ra, printInt
    li a0, 0
    jr s1
`,
			output: "42\n",
		},
		{
			name: "arithmetic",
			src: `
main:
    mv s1, ra
    li t0, 10
    li t1, 3
    sub a0, t0, t1  // 7
    jal ra, printInt
    li t0, 10
    div a0, t0, t1
    jal ra, printInt
    rem a0, t0, t1
    jal ra, printInt
    mul a0, t0, t1
    jal ra, printInt
    jr s1
`,
			output: "7\n3\n1\n30\n",
			exit:   30,
		},
		{
			name: "division by zero",
			src: `
main:
    mv s1, ra
    li t0, 7
    li t1, 0
    div a0, t0, t1
    jal ra, printInt
    rem a0, t0, t1
    jal ra, printInt
    jr s1
`,
			output: "-1\n7\n",
			exit:   7,
		},
		{
			name: "loop with branch",
			src: `
main:
    mv s1, ra
    li t0, 0
    li t1, 3
.L1:
    beq t0, t1, .L2
    mv a0, t0
    jal ra, printInt
    addi t0, t0, 1
    j .L1
.L2:
    jr s1
`,
			output: "0\n1\n2\n",
			exit:   2,
		},
		{
			name: "global data",
			src: `
.comm counter, 4, 4
.section    .rodata
limit:
    .word 5
.section    .text
main:
    mv s1, ra
    la t0, limit
    lw t1, 0(t0)
    la t0, counter
    sw t1, 0(t0)
    lw a0, 0(t0)
    jal ra, printInt
    jr s1
`,
			output: "5\n",
			exit:   5,
		},
		{
			name: "read",
			src: `
main:
    mv s1, ra
    jal ra, readInt
    addi a0, a0, 1
    jal ra, printInt
    jr s1
`,
			input:  " 41\n",
			output: "42\n",
			exit:   42,
		},
		{
			name: "call and return",
			src: `
double:
    add a0, a0, a0
    jr ra
main:
    addi sp, sp, -16
    sw ra, 12(sp)
    li a0, 21
    jal ra, double
    jal ra, printInt
    lw ra, 12(sp)
    addi sp, sp, 16
    jr ra
`,
			output: "42\n",
			exit:   42,
		},
		{
			name: "set instructions",
			src: `
main:
    mv s1, ra
    li t0, -4
    sltz a0, t0
    jal ra, printInt
    sgtz a0, t0
    jal ra, printInt
    seqz a0, zero
    jal ra, printInt
    xori a0, a0, 1
    jal ra, printInt
    jr s1
`,
			output: "1\n0\n1\n0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			result, err := Run(tt.src, Options{Input: strings.NewReader(tt.input), Output: &out})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if out.String() != tt.output {
				t.Errorf("output = %q, want %q", out.String(), tt.output)
			}
			if result.Exit != tt.exit {
				t.Errorf("exit = %d, want %d", result.Exit, tt.exit)
			}
			if !result.StackBalanced {
				t.Errorf("stack not balanced")
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    Options
		wantErr error
	}{
		{
			name:    "missing entry",
			src:     "start:\n    jr ra\n",
			wantErr: ErrUnknownSymbol,
		},
		{
			name:    "unknown call target",
			src:     "main:\n    jal ra, nowhere\n    jr ra\n",
			wantErr: ErrUnknownSymbol,
		},
		{
			name:    "infinite loop",
			src:     "main:\n.L1:\n    j .L1\n",
			opts:    Options{MaxSteps: 100},
			wantErr: ErrStepLimit,
		},
		{
			name:    "misaligned load",
			src:     "main:\n    lw t0, 2(sp)\n    jr ra\n",
			wantErr: ErrBadAccess,
		},
		{
			name:    "read without input",
			src:     "main:\n    jal ra, readInt\n    jr ra\n",
			wantErr: ErrInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.src, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"duplicate label", "a:\na:\n"},
		{"bad register", "main:\n    lw t0, 0(q9)\n"},
		{"instruction in data", ".section .rodata\n    li t0, 1\n"},
		{"bad word", ".section .rodata\nx:\n    .word abc\n"},
		{"addi immediate too large", "main:\n    addi sp, sp, 2048\n"},
		{"addi immediate too small", "main:\n    addi sp, sp, -2049\n"},
		{"load offset too large", "main:\n    lw ra, 2048(sp)\n"},
		{"store offset too small", "main:\n    sw ra, -2049(s0)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.src); err == nil {
				t.Errorf("Parse() expected error")
			}
		})
	}
}

func TestUnbalancedStack(t *testing.T) {
	src := `
main:
    addi sp, sp, -4
    jr ra
`
	result, err := Run(src, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.StackBalanced {
		t.Errorf("expected unbalanced stack to be reported")
	}
}

func TestParseImmediateLimits(t *testing.T) {
	src := `
main:
    li t0, 100000
    addi sp, sp, -2048
    sw t0, 2044(sp)
    lw a0, 2044(sp)
    addi sp, sp, 2047
    addi sp, sp, 1
    jr ra
`
	result, err := Run(src, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Exit != 100000 || !result.StackBalanced {
		t.Errorf("result = %+v", result)
	}
}
