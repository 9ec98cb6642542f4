package x86_64

import (
	"github.com/pkg/errors"

	"github.com/iley/stackc/internal/asm"
	"github.com/iley/stackc/internal/ast"
)

const (
	WORD_SIZE = 8 // every stack cell is 8 bytes
)

// ErrInternal means the generator received a tree the parser can never produce.
var ErrInternal = errors.New("internal consistency error")

type CodegenContext struct {
	lines []asm.Line
}

func (cc *CodegenContext) emit(line asm.Line) {
	cc.lines = append(cc.lines, line)
}

// Generate emits stack machine code for every statement of the program, in order.
// Each expression leaves exactly one value on the stack.
func Generate(program *ast.Program) ([]asm.Line, error) {
	cc := &CodegenContext{lines: []asm.Line{}}
	for i, stmt := range program.Statements {
		if err := generateStatement(cc, stmt); err != nil {
			return nil, errors.Wrapf(err, "statement %d", i+1)
		}
	}
	return cc.lines, nil
}

func generateStatement(cc *CodegenContext, node *ast.Node) error {
	if node == nil {
		return errors.Wrap(ErrInternal, "nil statement")
	}
	switch node.Kind {
	case ast.NODE_EXPR_STMT:
		if err := generateExpression(cc, node.Left); err != nil {
			return err
		}
		// Drop the value without reading it.
		cc.emit(asm.Op2("add", asm.RSP, asm.Imm(WORD_SIZE)))
		return nil
	case ast.NODE_RETURN:
		if err := generateExpression(cc, node.Left); err != nil {
			return err
		}
		cc.emit(asm.Op1("pop", asm.RAX))
		cc.emit(asm.Op0("ret"))
		return nil
	}
	return errors.Wrapf(ErrInternal, "%s: unexpected %s node in statement position", node.Loc, node.Kind)
}

func generateExpression(cc *CodegenContext, node *ast.Node) error {
	if node == nil {
		return errors.Wrap(ErrInternal, "nil expression")
	}

	if node.Kind == ast.NODE_NUM {
		cc.emit(asm.Op1("push", asm.Imm(node.Val)))
		return nil
	}

	if !node.Kind.IsBinary() {
		return errors.Wrapf(ErrInternal, "%s: unexpected %s node in expression position", node.Loc, node.Kind)
	}

	if err := generateExpression(cc, node.Left); err != nil {
		return err
	}
	if err := generateExpression(cc, node.Right); err != nil {
		return err
	}

	cc.emit(asm.Op1("pop", asm.RDI))
	cc.emit(asm.Op1("pop", asm.RAX))

	switch node.Kind {
	case ast.NODE_ADD:
		cc.emit(asm.Op2("add", asm.RAX, asm.RDI))
	case ast.NODE_SUB:
		cc.emit(asm.Op2("sub", asm.RAX, asm.RDI))
	case ast.NODE_MUL:
		cc.emit(asm.Op2("imul", asm.RAX, asm.RDI))
	case ast.NODE_DIV:
		// Sign-extend rax into rdx:rax; the quotient ends up in rax.
		cc.emit(asm.Op0("cqo"))
		cc.emit(asm.Op1("idiv", asm.RDI))
	case ast.NODE_EQ:
		generateComparison(cc, "sete")
	case ast.NODE_NE:
		generateComparison(cc, "setne")
	case ast.NODE_LT:
		generateComparison(cc, "setl")
	case ast.NODE_LE:
		generateComparison(cc, "setle")
	}

	cc.emit(asm.Op1("push", asm.RAX))
	return nil
}

func generateComparison(cc *CodegenContext, setOp string) {
	cc.emit(asm.Op2("cmp", asm.RAX, asm.RDI))
	cc.emit(asm.Op1(setOp, asm.AL))
	cc.emit(asm.Op2("movzb", asm.RAX, asm.AL))
}
