package ast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v int64) *Node {
	return NewNum(Location{}, v)
}

func bin(kind NodeKind, l, r *Node) *Node {
	return NewBinary(Location{}, kind, l, r)
}

func TestNodeKindClassification(t *testing.T) {
	binary := []NodeKind{NODE_ADD, NODE_SUB, NODE_MUL, NODE_DIV, NODE_EQ, NODE_NE, NODE_LT, NODE_LE}
	for _, k := range binary {
		assert.True(t, k.IsBinary(), k.String())
		assert.False(t, k.IsStatement(), k.String())
		assert.NotEmpty(t, k.Operator(), k.String())
	}

	for _, k := range []NodeKind{NODE_EXPR_STMT, NODE_RETURN} {
		assert.True(t, k.IsStatement(), k.String())
		assert.False(t, k.IsBinary(), k.String())
	}

	assert.False(t, NODE_NUM.IsBinary())
	assert.False(t, NODE_NUM.IsStatement())
	assert.Equal(t, "NodeKind(42)", NodeKind(42).String())
}

func TestConstructorsRejectWrongShapes(t *testing.T) {
	assert.Panics(t, func() { NewBinary(Location{}, NODE_RETURN, num(1), num(2)) })
	assert.Panics(t, func() { NewBinary(Location{}, NODE_NUM, nil, nil) })
	assert.Panics(t, func() { NewUnary(Location{}, NODE_ADD, num(1)) })
}

func TestString(t *testing.T) {
	program := &Program{
		Statements: []*Node{
			NewUnary(Location{}, NODE_EXPR_STMT, bin(NODE_SUB, num(0), num(5))),
			NewUnary(Location{}, NODE_RETURN, bin(NODE_ADD, num(1), bin(NODE_MUL, num(2), num(3)))),
		},
	}
	assert.Equal(t, "(program (expr (- 0 5)) (return (+ 1 (* 2 3))))", program.String())
	assert.Equal(t, "(program)", (&Program{}).String())
}

func TestPrinter(t *testing.T) {
	tests := []struct {
		name     string
		program  *Program
		expected string
	}{
		{
			name:     "empty program",
			program:  &Program{},
			expected: "",
		},
		{
			name: "single number",
			program: &Program{Statements: []*Node{
				NewUnary(Location{}, NODE_EXPR_STMT, num(42)),
			}},
			expected: "42;\n",
		},
		{
			name: "nested binary operations",
			program: &Program{Statements: []*Node{
				NewUnary(Location{}, NODE_EXPR_STMT, bin(NODE_SUB, bin(NODE_SUB, num(1), num(2)), num(3))),
				NewUnary(Location{}, NODE_RETURN, bin(NODE_LE, num(2), bin(NODE_DIV, num(8), num(4)))),
			}},
			expected: "((1 - 2) - 3);\nreturn (2 <= (8 / 4));\n",
		},
		{
			name: "comparisons",
			program: &Program{Statements: []*Node{
				NewUnary(Location{}, NODE_EXPR_STMT, bin(NODE_EQ, num(1), bin(NODE_NE, num(2), bin(NODE_LT, num(3), num(4))))),
			}},
			expected: "(1 == (2 != (3 < 4)));\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			NewPrinter(&sb).PrintProgram(tt.program)
			assert.Equal(t, tt.expected, sb.String())
		})
	}
}

func TestPrinterRejectsMalformedTrees(t *testing.T) {
	var sb strings.Builder
	p := NewPrinter(&sb)
	require.Panics(t, func() { p.PrintStatement(num(1)) })
	require.Panics(t, func() { p.PrintExpression(&Node{Kind: NODE_RETURN, Left: num(1)}) })
}
