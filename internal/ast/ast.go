package ast

import (
	"fmt"
	"strings"

	"github.com/iley/stackc/internal/lexer"
)

type Location = lexer.Location

type NodeKind int

const (
	NODE_NUM NodeKind = iota
	NODE_ADD
	NODE_SUB
	NODE_MUL
	NODE_DIV
	NODE_EQ
	NODE_NE
	NODE_LT
	NODE_LE
	NODE_EXPR_STMT
	NODE_RETURN
)

func (k NodeKind) String() string {
	switch k {
	case NODE_NUM:
		return "NUM"
	case NODE_ADD:
		return "ADD"
	case NODE_SUB:
		return "SUB"
	case NODE_MUL:
		return "MUL"
	case NODE_DIV:
		return "DIV"
	case NODE_EQ:
		return "EQ"
	case NODE_NE:
		return "NE"
	case NODE_LT:
		return "LT"
	case NODE_LE:
		return "LE"
	case NODE_EXPR_STMT:
		return "EXPR_STMT"
	case NODE_RETURN:
		return "RETURN"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

func (k NodeKind) IsBinary() bool {
	return k >= NODE_ADD && k <= NODE_LE
}

func (k NodeKind) IsStatement() bool {
	return k == NODE_EXPR_STMT || k == NODE_RETURN
}

// Operator returns the source-level operator of a binary kind.
func (k NodeKind) Operator() string {
	switch k {
	case NODE_ADD:
		return "+"
	case NODE_SUB:
		return "-"
	case NODE_MUL:
		return "*"
	case NODE_DIV:
		return "/"
	case NODE_EQ:
		return "=="
	case NODE_NE:
		return "!="
	case NODE_LT:
		return "<"
	case NODE_LE:
		return "<="
	default:
		return ""
	}
}

// Node is a single AST node. NUM nodes only use Val, statement nodes only use Left,
// and binary nodes use Left and Right.
type Node struct {
	Kind  NodeKind
	Left  *Node
	Right *Node
	Val   int64
	Loc   Location
}

func NewNum(loc Location, val int64) *Node {
	return &Node{Kind: NODE_NUM, Val: val, Loc: loc}
}

func NewBinary(loc Location, kind NodeKind, left, right *Node) *Node {
	if !kind.IsBinary() {
		panic(fmt.Sprintf("NewBinary called with non-binary kind %s", kind))
	}
	return &Node{Kind: kind, Left: left, Right: right, Loc: loc}
}

func NewUnary(loc Location, kind NodeKind, expr *Node) *Node {
	if !kind.IsStatement() {
		panic(fmt.Sprintf("NewUnary called with non-statement kind %s", kind))
	}
	return &Node{Kind: kind, Left: expr, Loc: loc}
}

func (n *Node) GetLocation() Location {
	return n.Loc
}

func (n *Node) String() string {
	switch {
	case n.Kind == NODE_NUM:
		return fmt.Sprintf("%d", n.Val)
	case n.Kind == NODE_EXPR_STMT:
		return fmt.Sprintf("(expr %s)", n.Left)
	case n.Kind == NODE_RETURN:
		return fmt.Sprintf("(return %s)", n.Left)
	case n.Kind.IsBinary():
		return fmt.Sprintf("(%s %s %s)", n.Kind.Operator(), n.Left, n.Right)
	}
	return fmt.Sprintf("(%s)", n.Kind)
}

// Program is the ordered list of top-level statements.
type Program struct {
	Statements []*Node
}

func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("(program")
	for _, stmt := range p.Statements {
		sb.WriteString(" ")
		sb.WriteString(stmt.String())
	}
	sb.WriteString(")")
	return sb.String()
}
