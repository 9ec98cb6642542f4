package x86_64_linux

import (
	"fmt"
	"io"

	"github.com/iley/stackc/internal/asm"
)

type Syntax int

const (
	SyntaxIntel Syntax = iota
	SyntaxATT
)

// AT&T mnemonics carry an operand size suffix where the operands don't imply one.
var attMnemonics = map[string]string{
	"push":  "pushq",
	"pop":   "popq",
	"add":   "addq",
	"sub":   "subq",
	"imul":  "imulq",
	"cqo":   "cqto",
	"idiv":  "idivq",
	"cmp":   "cmpq",
	"movzb": "movzbq",
}

// formatProgram writes fn as a complete assembler file. A final ret follows the
// body so a program without a return statement still returns whatever is in rax.
func formatProgram(out io.Writer, fn asm.Function, syntax Syntax) {
	if syntax == SyntaxIntel {
		fmt.Fprintf(out, ".intel_syntax noprefix\n")
	}
	fmt.Fprintf(out, ".text\n")
	fmt.Fprintf(out, ".globl %s\n", fn.Name)
	fmt.Fprintf(out, ".type %s, @function\n", fn.Name)
	fmt.Fprintf(out, "%s:\n", fn.Name)

	formatBody(out, fn.Lines, syntax)
	formatLine(out, asm.Op0("ret"), syntax)

	fmt.Fprintf(out, ".size %s, .-%s\n", fn.Name, fn.Name)
}

func formatBody(out io.Writer, lines []asm.Line, syntax Syntax) {
	for _, line := range lines {
		formatLine(out, line, syntax)
	}
}

func formatLine(out io.Writer, line asm.Line, syntax Syntax) {
	if line.Op != "" {
		if syntax == SyntaxATT {
			formatATT(out, line)
		} else {
			fmt.Fprintf(out, "  %s", line.Op)
			if line.Arity >= 1 {
				fmt.Fprintf(out, " %s", line.Arg1)
			}
			if line.Arity >= 2 {
				fmt.Fprintf(out, ", %s", line.Arg2)
			}
		}
	}

	if line.Comment != "" {
		fmt.Fprintf(out, "  # %s", line.Comment)
	}

	fmt.Fprintf(out, "\n")
}

// formatATT writes operands in reverse order: source first, destination last.
func formatATT(out io.Writer, line asm.Line) {
	op := line.Op
	if mnemonic, ok := attMnemonics[op]; ok {
		op = mnemonic
	}
	fmt.Fprintf(out, "  %s", op)

	switch line.Arity {
	case 1:
		fmt.Fprintf(out, " %s", argToATT(line.Arg1))
	case 2:
		fmt.Fprintf(out, " %s, %s", argToATT(line.Arg2), argToATT(line.Arg1))
	}
}

func argToATT(arg asm.Arg) string {
	if arg.Reg != "" {
		return fmt.Sprintf("%%%s", arg.Reg)
	} else if arg.Imm != nil {
		return fmt.Sprintf("$%d", *arg.Imm)
	}
	panic(fmt.Errorf("invalid arg %#v", arg))
}
