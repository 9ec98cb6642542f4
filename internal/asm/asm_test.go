package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineString(t *testing.T) {
	tests := []struct {
		name     string
		line     Line
		expected string
	}{
		{"no operands", Op0("cqo"), "cqo"},
		{"register", Op1("pop", RDI), "pop rdi"},
		{"immediate", Op1("push", Imm(42)), "push 42"},
		{"negative immediate", Op1("push", Imm(-7)), "push -7"},
		{"two registers", Op2("movzb", RAX, AL), "movzb rax, al"},
		{"register and immediate", Op2("add", RSP, Imm(8)), "add rsp, 8"},
		{"comment only", Comment("statement 1"), "# statement 1"},
		{"instruction with comment", Line{Op: "ret", Comment: "done"}, "ret  # done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.line.String())
		})
	}
}

func TestArg(t *testing.T) {
	assert.True(t, Reg("rax").IsReg())
	assert.False(t, Reg("rax").IsImm())
	assert.True(t, Imm(0).IsImm())
	assert.Equal(t, RAX, Reg("rax"))
	assert.Panics(t, func() { _ = Arg{}.String() })
}
