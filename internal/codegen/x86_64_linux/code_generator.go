package x86_64_linux

import (
	"io"

	"github.com/iley/stackc/internal/asm"
	"github.com/iley/stackc/internal/ast"
	"github.com/iley/stackc/internal/codegen/x86_64"
)

const ENTRY_POINT = "main"

type CodeGenerator struct {
	Syntax Syntax
	// Bare output has only the instruction body, without directives, label or the final ret.
	Bare bool
}

func (cg *CodeGenerator) Generate(program *ast.Program) (asm.Function, error) {
	lines, err := x86_64.Generate(program)
	if err != nil {
		return asm.Function{}, err
	}
	return asm.Function{Name: ENTRY_POINT, Lines: lines}, nil
}

func (cg *CodeGenerator) Format(out io.Writer, fn asm.Function) {
	if cg.Bare {
		formatBody(out, fn.Lines, cg.Syntax)
		return
	}
	formatProgram(out, fn, cg.Syntax)
}
