// Package compiler runs the lexer, parser and code generator as one pipeline.
package compiler

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iley/stackc/internal/asm"
	"github.com/iley/stackc/internal/ast"
	"github.com/iley/stackc/internal/codegen/x86_64"
	"github.com/iley/stackc/internal/lexer"
	"github.com/iley/stackc/internal/parser"
)

type Options struct {
	Filename string
	Logger   *zap.Logger // nil disables logging
}

type Result struct {
	Program *ast.Program
	Lines   []asm.Line
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Compile turns source text into instruction lines. The first error stops the
// pipeline and no result is returned.
func Compile(src io.Reader, opts Options) (*Result, error) {
	log := opts.logger().With(zap.String("file", opts.Filename))

	lexemes, err := lexer.Tokenize(src, opts.Filename)
	if err != nil {
		return nil, errors.Wrap(err, "tokenizing")
	}
	log.Debug("tokenized", zap.Int("lexemes", len(lexemes)))

	program, err := parser.New(lexemes).ParseProgram()
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}
	log.Debug("parsed", zap.Int("statements", len(program.Statements)))

	lines, err := x86_64.Generate(program)
	if err != nil {
		log.Error("code generator rejected parser output", zap.Error(err))
		return nil, errors.Wrap(err, "generating code")
	}
	log.Debug("generated", zap.Int("lines", len(lines)))

	return &Result{Program: program, Lines: lines}, nil
}

func CompileString(src string, opts Options) (*Result, error) {
	return Compile(strings.NewReader(src), opts)
}
