package compiler

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/iley/stackc/internal/lexer"
	"github.com/iley/stackc/internal/parser"
)

// errorLocation returns the source position and message of a lexer or parser
// error anywhere in err's chain.
func errorLocation(err error) (lexer.Location, string, bool) {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return lexErr.Loc, lexErr.Error(), true
	}
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Loc, syntaxErr.Error(), true
	}
	return lexer.Location{}, "", false
}

// Diagnostic formats err for the user. Errors with a source position also show
// the offending line with a caret under the column.
func Diagnostic(src string, err error) string {
	loc, msg, ok := errorLocation(err)
	if !ok {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	if loc.Line < 1 || loc.Line > len(lines) {
		return msg
	}
	line := strings.TrimRight(lines[loc.Line-1], "\r")

	var caret strings.Builder
	for i, r := range []rune(line) {
		if i >= loc.Col-1 {
			break
		}
		if r == '\t' {
			caret.WriteRune('\t')
		} else {
			caret.WriteRune(' ')
		}
	}
	// A position past the end of the line (EOF, missing ';') gets padded out.
	for i := len([]rune(line)); i < loc.Col-1; i++ {
		caret.WriteRune(' ')
	}
	caret.WriteRune('^')

	return msg + "\n" + line + "\n" + caret.String()
}
