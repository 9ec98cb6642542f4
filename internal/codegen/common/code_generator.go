package common

import (
	"io"

	"github.com/iley/stackc/internal/asm"
	"github.com/iley/stackc/internal/ast"
)

type CodeGenerator interface {
	Generate(*ast.Program) (asm.Function, error)
	Format(io.Writer, asm.Function)
}
