package ast

import (
	"fmt"
	"io"
)

// Printer writes a program back as source text. Every binary operation is
// parenthesised, so the output parses back into the same tree.
type Printer struct {
	output io.Writer
}

func NewPrinter(output io.Writer) *Printer {
	return &Printer{output: output}
}

func (p *Printer) write(s string) {
	fmt.Fprint(p.output, s)
}

func (p *Printer) writeln(s string) {
	p.write(s)
	p.write("\n")
}

func (p *Printer) PrintProgram(program *Program) {
	for _, stmt := range program.Statements {
		p.PrintStatement(stmt)
	}
}

func (p *Printer) PrintStatement(stmt *Node) {
	switch stmt.Kind {
	case NODE_RETURN:
		p.write("return ")
		p.PrintExpression(stmt.Left)
		p.writeln(";")
	case NODE_EXPR_STMT:
		p.PrintExpression(stmt.Left)
		p.writeln(";")
	default:
		panic(fmt.Sprintf("not a statement: %s", stmt.Kind))
	}
}

func (p *Printer) PrintExpression(expr *Node) {
	if expr.Kind == NODE_NUM {
		p.write(fmt.Sprintf("%d", expr.Val))
		return
	}
	if !expr.Kind.IsBinary() {
		panic(fmt.Sprintf("not an expression: %s", expr.Kind))
	}
	p.write("(")
	p.PrintExpression(expr.Left)
	p.write(" " + expr.Kind.Operator() + " ")
	p.PrintExpression(expr.Right)
	p.write(")")
}
