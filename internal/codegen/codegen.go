package codegen

import (
	"fmt"
	"io"

	"github.com/iley/stackc/internal/ast"
	"github.com/iley/stackc/internal/codegen/common"
	"github.com/iley/stackc/internal/codegen/x86_64_linux"
)

type Target int

const (
	TargetX86_64Linux Target = iota
	TargetX86_64LinuxATT
)

var targetNames = map[string]Target{
	"x86_64-linux":     TargetX86_64Linux,
	"x86_64-linux-att": TargetX86_64LinuxATT,
}

func TargetFromName(name string) (Target, error) {
	if target, ok := targetNames[name]; ok {
		return target, nil
	}
	return 0, fmt.Errorf("unknown target: %s", name)
}

func (t Target) String() string {
	for name, target := range targetNames {
		if target == t {
			return name
		}
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

type Options struct {
	Bare bool
}

func newCodeGenerator(target Target, opts Options) (common.CodeGenerator, error) {
	switch target {
	case TargetX86_64Linux:
		return &x86_64_linux.CodeGenerator{Syntax: x86_64_linux.SyntaxIntel, Bare: opts.Bare}, nil
	case TargetX86_64LinuxATT:
		return &x86_64_linux.CodeGenerator{Syntax: x86_64_linux.SyntaxATT, Bare: opts.Bare}, nil
	}
	return nil, fmt.Errorf("unknown target: %v", target)
}

// Generate writes assembly for the program to out. Nothing is written if generation fails.
func Generate(out io.Writer, target Target, program *ast.Program, opts Options) error {
	cg, err := newCodeGenerator(target, opts)
	if err != nil {
		return err
	}

	fn, err := cg.Generate(program)
	if err != nil {
		return err
	}

	cg.Format(out, fn)
	return nil
}
