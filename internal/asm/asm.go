package asm

import (
	"fmt"
	"strings"
)

var (
	RAX = Arg{Reg: "rax"}
	RDI = Arg{Reg: "rdi"}
	RDX = Arg{Reg: "rdx"}
	RSP = Arg{Reg: "rsp"}
	AL  = Arg{Reg: "al"}
)

// Function is a named sequence of instructions, used when packaging the
// generated body into an assembler-consumable file.
type Function struct {
	Name  string
	Lines []Line
}

type Line struct {
	Comment string
	Op      string
	Arity   int
	Arg1    Arg
	Arg2    Arg
}

// String renders the line in Intel syntax without indentation.
func (l Line) String() string {
	var sb strings.Builder
	sb.WriteString(l.Op)
	if l.Arity >= 1 {
		sb.WriteString(" ")
		sb.WriteString(l.Arg1.String())
	}
	if l.Arity >= 2 {
		sb.WriteString(", ")
		sb.WriteString(l.Arg2.String())
	}
	if l.Comment != "" {
		if l.Op != "" {
			sb.WriteString("  ")
		}
		sb.WriteString("# ")
		sb.WriteString(l.Comment)
	}
	return sb.String()
}

type Arg struct {
	Reg string
	Imm *int64
}

func (a Arg) IsReg() bool {
	return a.Reg != ""
}

func (a Arg) IsImm() bool {
	return a.Imm != nil
}

func (a Arg) String() string {
	if a.Reg != "" {
		return a.Reg
	}
	if a.Imm != nil {
		return fmt.Sprintf("%d", *a.Imm)
	}
	panic(fmt.Errorf("invalid arg %#v", a))
}

func Imm(value int64) Arg {
	return Arg{Imm: &value}
}

func Reg(reg string) Arg {
	return Arg{Reg: reg}
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

func Comment(text string) Line {
	return Line{Comment: text}
}
