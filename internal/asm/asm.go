package asm

var (
	RA = Arg{Reg: "ra"}
	SP = Arg{Reg: "sp"}
	S0 = Arg{Reg: "s0"}
	T0 = Arg{Reg: "t0"}
	T1 = Arg{Reg: "t1"}
	A0 = Arg{Reg: "a0"}
)

type Program struct {
	File      string
	Globals   []GlobalVariable
	Constants []GlobalConstant
	Functions []Function
}

type Function struct {
	Name   string
	Global bool
	Lines  []Line
}

type Line struct {
	Comment string
	Label   string
	Op      string
	Arity   int
	Arg1    Arg
	Arg2    Arg
	Arg3    Arg
}

// Arg is one instruction operand. With Deref set it renders as Offset(Reg).
type Arg struct {
	Reg    string
	Offset int
	Imm    *int
	Label  string
	Deref  bool
}

func (a Arg) WithOffset(offset int) Arg {
	result := a
	result.Offset = offset
	return result
}

func (a Arg) AsDeref() Arg {
	result := a
	result.Deref = true
	return result
}

type GlobalVariable struct {
	Label string
	Size  int
	Align int
}

type GlobalConstant struct {
	Label string
	Value int64
}

func Imm(value int) Arg {
	return Arg{Imm: &value}
}

func DerefWithOffset(arg Arg, offset int) Arg {
	return arg.WithOffset(offset).AsDeref()
}

func Reg(reg string) Arg {
	return Arg{Reg: reg}
}

func Ref(label string) Arg {
	return Arg{Label: label}
}

func Op0(op string) Line {
	return Line{Op: op, Arity: 0}
}

func Op1(op string, arg Arg) Line {
	return Line{Op: op, Arity: 1, Arg1: arg}
}

func Op2(op string, arg1, arg2 Arg) Line {
	return Line{Op: op, Arity: 2, Arg1: arg1, Arg2: arg2}
}

func Op3(op string, arg1, arg2, arg3 Arg) Line {
	return Line{Op: op, Arity: 3, Arg1: arg1, Arg2: arg2, Arg3: arg3}
}

func Comment(text string) Line {
	return Line{Comment: text}
}

func Label(text string) Line {
	return Line{Label: text}
}
