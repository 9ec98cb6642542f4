// Package vm executes generated instruction lines on a model of the target
// stack machine: 8-byte stack cells, the rax/rdi/rdx registers and the flags
// set by cmp. It understands exactly the instructions the code generator emits.
package vm

import (
	"math"

	"github.com/pkg/errors"

	"github.com/iley/stackc/internal/asm"
)

var (
	ErrStackOverflow      = errors.New("vm: stack overflow")
	ErrStackUnderflow     = errors.New("vm: stack underflow")
	ErrDivideByZero       = errors.New("vm: integer divide by zero")
	ErrOverflow           = errors.New("vm: integer overflow in division")
	ErrUnknownInstruction = errors.New("vm: unsupported instruction")
	ErrNoFlags            = errors.New("vm: condition code read before cmp")
)

const (
	StackDepth = 4096
	WORD_SIZE  = 8
)

// Result describes a finished run.
type Result struct {
	Value    int64 // rax at ret, or at the end of the program
	Steps    int   // instructions executed
	Depth    int   // cells left on the stack
	MaxDepth int
}

type Machine struct {
	Stack [StackDepth]int64
	SP    int

	RAX int64
	RDI int64
	RDX int64

	// Operands of the last cmp.
	cmpLeft  int64
	cmpRight int64
	hasFlags bool

	IP       int
	Code     []asm.Line
	steps    int
	maxDepth int
}

func New(code []asm.Line) *Machine {
	return &Machine{Code: code}
}

// Run executes lines from the start and returns the value left in rax.
func Run(code []asm.Line) (Result, error) {
	return New(code).Run()
}

func (m *Machine) Reset() {
	m.SP = 0
	m.IP = 0
	m.RAX, m.RDI, m.RDX = 0, 0, 0
	m.hasFlags = false
	m.steps = 0
	m.maxDepth = 0
}

func (m *Machine) push(v int64) error {
	if m.SP >= StackDepth {
		return ErrStackOverflow
	}
	m.Stack[m.SP] = v
	m.SP++
	if m.SP > m.maxDepth {
		m.maxDepth = m.SP
	}
	return nil
}

func (m *Machine) pop() (int64, error) {
	if m.SP <= 0 {
		return 0, ErrStackUnderflow
	}
	m.SP--
	return m.Stack[m.SP], nil
}

func (m *Machine) register(arg asm.Arg) (*int64, error) {
	switch arg.Reg {
	case "rax":
		return &m.RAX, nil
	case "rdi":
		return &m.RDI, nil
	case "rdx":
		return &m.RDX, nil
	}
	return nil, errors.Wrapf(ErrUnknownInstruction, "unsupported register operand %q", arg.Reg)
}

func (m *Machine) value(arg asm.Arg) (int64, error) {
	if arg.IsImm() {
		return *arg.Imm, nil
	}
	r, err := m.register(arg)
	if err != nil {
		return 0, err
	}
	return *r, nil
}

func (m *Machine) result() Result {
	return Result{Value: m.RAX, Steps: m.steps, Depth: m.SP, MaxDepth: m.maxDepth}
}

// Run executes until ret, the end of the code, or an error.
func (m *Machine) Run() (Result, error) {
	for m.IP < len(m.Code) {
		line := m.Code[m.IP]
		m.IP++
		if line.Op == "" {
			continue
		}
		m.steps++

		done, err := m.step(line)
		if err != nil {
			return m.result(), errors.Wrapf(err, "instruction %d (%s)", m.IP, line)
		}
		if done {
			break
		}
	}
	return m.result(), nil
}

func (m *Machine) step(line asm.Line) (bool, error) {
	switch line.Op {
	case "push":
		v, err := m.value(line.Arg1)
		if err != nil {
			return false, err
		}
		return false, m.push(v)

	case "pop":
		r, err := m.register(line.Arg1)
		if err != nil {
			return false, err
		}
		v, err := m.pop()
		if err != nil {
			return false, err
		}
		*r = v
		return false, nil

	case "add", "sub", "imul":
		if line.Op == "add" && line.Arg1.Reg == "rsp" {
			return false, m.releaseStack(line.Arg2)
		}
		dst, err := m.register(line.Arg1)
		if err != nil {
			return false, err
		}
		src, err := m.value(line.Arg2)
		if err != nil {
			return false, err
		}
		switch line.Op {
		case "add":
			*dst += src
		case "sub":
			*dst -= src
		case "imul":
			*dst *= src
		}
		return false, nil

	case "cqo":
		m.RDX = m.RAX >> 63
		return false, nil

	case "idiv":
		return false, m.divide(line.Arg1)

	case "cmp":
		left, err := m.value(line.Arg1)
		if err != nil {
			return false, err
		}
		right, err := m.value(line.Arg2)
		if err != nil {
			return false, err
		}
		m.cmpLeft, m.cmpRight, m.hasFlags = left, right, true
		return false, nil

	case "sete", "setne", "setl", "setle":
		return false, m.setCondition(line)

	case "movzb":
		if line.Arg1.Reg != "rax" || line.Arg2.Reg != "al" {
			return false, errors.Wrapf(ErrUnknownInstruction, "movzb %s, %s", line.Arg1.Reg, line.Arg2.Reg)
		}
		m.RAX &= 0xff
		return false, nil

	case "ret":
		return true, nil
	}
	return false, errors.Wrapf(ErrUnknownInstruction, "unknown mnemonic %q", line.Op)
}

// releaseStack handles "add rsp, N", which drops N/8 cells.
func (m *Machine) releaseStack(amount asm.Arg) error {
	if !amount.IsImm() || *amount.Imm < 0 || *amount.Imm%WORD_SIZE != 0 {
		return errors.Wrap(ErrUnknownInstruction, "rsp can only be adjusted by a non-negative multiple of 8")
	}
	cells := int(*amount.Imm / WORD_SIZE)
	if cells > m.SP {
		return ErrStackUnderflow
	}
	m.SP -= cells
	return nil
}

func (m *Machine) divide(arg asm.Arg) error {
	divisor, err := m.value(arg)
	if err != nil {
		return err
	}
	// Only a sign-extended rdx:rax dividend is modelled.
	if m.RDX != m.RAX>>63 {
		return errors.Wrap(ErrUnknownInstruction, "idiv without sign-extended rdx")
	}
	if divisor == 0 {
		return ErrDivideByZero
	}
	if m.RAX == math.MinInt64 && divisor == -1 {
		return ErrOverflow
	}
	m.RAX, m.RDX = m.RAX/divisor, m.RAX%divisor
	return nil
}

func (m *Machine) setCondition(line asm.Line) error {
	if line.Arg1.Reg != "al" {
		return errors.Wrapf(ErrUnknownInstruction, "%s only supports al", line.Op)
	}
	if !m.hasFlags {
		return ErrNoFlags
	}

	var cond bool
	switch line.Op {
	case "sete":
		cond = m.cmpLeft == m.cmpRight
	case "setne":
		cond = m.cmpLeft != m.cmpRight
	case "setl":
		cond = m.cmpLeft < m.cmpRight
	case "setle":
		cond = m.cmpLeft <= m.cmpRight
	}

	var b int64
	if cond {
		b = 1
	}
	m.RAX = (m.RAX &^ 0xff) | b
	return nil
}
